package telegram

import (
	"encoding/json"
	"time"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/model"
	pkgTelegram "etf-advisor/pkg/telegram"
)

func (t *TelegramBotHandler) formatTick(tick *model.TickExecution) string {
	var duration time.Duration
	if tick.CompletedAt.Valid {
		duration = tick.CompletedAt.Time.Sub(tick.StartedAt)
	}

	var summary dto.TickSummary
	if len(tick.Summary) > 0 {
		_ = json.Unmarshal(tick.Summary, &summary)
	}

	return pkgTelegram.FormatTickSummaryForTelegram(
		string(tick.Status),
		tick.StartedAt,
		duration,
		tick.UsersTotal,
		tick.UsersProcessed,
		tick.NotifiedCount,
		summary.ThroughputPerSec,
	)
}
