package mailer

import (
	"html/template"
	"strings"
)

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a4f8b;">{{.Title}}</h2>
  {{range .Paragraphs}}<p>{{.}}</p>
  {{end}}
  <hr style="border: none; border-top: 1px solid #ddd;">
  <p style="font-size: 12px; color: #888;">You are receiving this because notifications are enabled in your investment settings.</p>
</body>
</html>`))

type notificationData struct {
	Title      string
	Paragraphs []string
}

// RenderNotificationHTML renders a plain-text notification body into the
// HTML email layout. Content is escaped by html/template.
func RenderNotificationHTML(title, content string) string {
	data := notificationData{Title: title}
	for _, p := range strings.Split(content, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			data.Paragraphs = append(data.Paragraphs, trimmed)
		}
	}

	var sb strings.Builder
	if err := notificationTemplate.Execute(&sb, data); err != nil {
		// Template and data are static shapes; fall back to the raw text.
		return content
	}
	return sb.String()
}
