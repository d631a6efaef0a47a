package mailer

import (
	"context"
	"fmt"

	"etf-advisor/config"
	"etf-advisor/pkg/httpclient"
	"etf-advisor/pkg/logger"
)

type SendGridClient struct {
	cfg    *config.Mailer
	log    *logger.Logger
	client httpclient.HTTPClient
}

func New(cfg *config.Mailer, log *logger.Logger) Mailer {
	var client httpclient.HTTPClient
	if cfg.Enabled && cfg.APIKey != "" {
		client = httpclient.New(cfg.BaseURL, cfg.Timeout, cfg.APIKey)
	}
	return &SendGridClient{
		cfg:    cfg,
		log:    log,
		client: client,
	}
}

// Send delivers one HTML email. Success is the backend accepting the message
// (202 and friends), not proof of inbox delivery.
func (s *SendGridClient) Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error {
	if s.client == nil {
		return ErrDisabled
	}

	payload := sendRequest{
		Personalizations: []personalization{
			{
				To:      []emailAddress{{Email: toEmail, Name: toName}},
				Subject: subject,
			},
		},
		From: emailAddress{
			Email: s.cfg.FromEmail,
			Name:  s.cfg.FromName,
		},
		Content: []emailContent{
			{Type: "text/html", Value: htmlContent},
		},
	}

	resp, err := s.client.Post(ctx, "/v3/mail/send", payload, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("email backend rejected message: status %d body %s", resp.StatusCode, string(resp.Body))
	}

	s.log.DebugContext(ctx, "Email accepted",
		logger.StringField("to", toEmail),
		logger.IntField("status_code", resp.StatusCode),
	)
	return nil
}
