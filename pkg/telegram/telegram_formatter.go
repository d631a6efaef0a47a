package telegram

import (
	"fmt"
	"strings"
	"time"

	"etf-advisor/pkg/utils"
)

// FormatTickSummaryForTelegram formats one pipeline tick into a Markdown
// string for the operator chat.
func FormatTickSummaryForTelegram(status string, startedAt time.Time, duration time.Duration, usersTotal, usersProcessed, notified int, throughput float64) string {
	var builder strings.Builder

	var title, emoji string
	switch status {
	case "completed":
		title = "Tick Completed"
		emoji = "✅"
	case "failed":
		title = "Tick Failed"
		emoji = "📛"
	case "running":
		title = "Tick Running"
		emoji = "⏳"
	default:
		title = "Tick"
		emoji = "🔔"
	}

	builder.WriteString(fmt.Sprintf("%s %s\n", emoji, title))
	builder.WriteString(fmt.Sprintf("🕐 %s (took %s)\n", utils.PrettyDate(startedAt), duration.Round(time.Millisecond)))
	builder.WriteString(fmt.Sprintf("👥 Users: %d/%d processed\n", usersProcessed, usersTotal))
	builder.WriteString(fmt.Sprintf("📨 Notified: %d\n", notified))
	builder.WriteString(fmt.Sprintf("⚡ Throughput: %.2f users/s\n", throughput))
	return builder.String()
}

// FormatHealthForTelegram formats the /health command response.
func FormatHealthForTelegram(dbOK bool, breakerState string, checkedAt time.Time) string {
	dbStatus := "✅ up"
	if !dbOK {
		dbStatus = "📛 down"
	}
	return fmt.Sprintf(`🩺 Health
DB: %s
Analyzer breaker: %s
%s
`, dbStatus, breakerState, utils.PrettyDate(checkedAt))
}
