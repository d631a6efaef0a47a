package middleware

import (
	"context"
	"time"

	"gopkg.in/telebot.v3"
)

// WithContext binds a bot handler to the process root context so command
// handling stops when the process shuts down.
func WithContext(rootCtx context.Context, timeout time.Duration, handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(rootCtx, timeout)
		defer cancel()

		return handler(ctx, c)
	}
}
