package mailer

import (
	"context"
	"errors"
)

// ErrDisabled is returned when no email backend is configured. Callers fall
// back to in-app delivery.
var ErrDisabled = errors.New("mailer: disabled")

type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error
}

type personalization struct {
	To      []emailAddress `json:"to"`
	Subject string         `json:"subject"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Content          []emailContent    `json:"content"`
}
