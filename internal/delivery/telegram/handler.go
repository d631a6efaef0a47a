package telegram

import (
	"context"
	"errors"
	"time"

	"etf-advisor/internal/service"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/middleware"
	pkgTelegram "etf-advisor/pkg/telegram"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) RegisterHandlers() {
	t.bot.Handle("/start", t.withAdmin(t.handleStart))
	t.bot.Handle("/help", t.withAdmin(t.handleStart))
	t.bot.Handle("/run", t.withAdmin(t.handleRun))
	t.bot.Handle("/metrics", t.withAdmin(t.handleMetrics))
	t.bot.Handle("/health", t.withAdmin(t.handleHealth))
}

// withAdmin binds a handler to the process context and drops commands from
// anyone but the configured operator chat.
func (t *TelegramBotHandler) withAdmin(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	wrapped := middleware.WithContext(t.ctx, t.cfg.Telegram.TimeoutDuration, handler)
	return func(c telebot.Context) error {
		if t.adminChatID == 0 || c.Chat().ID != t.adminChatID {
			t.log.Warn("Ignoring command from unauthorized chat",
				logger.Field("chat_id", c.Chat().ID),
				logger.StringField("command", c.Text()),
			)
			return nil
		}
		return wrapped(c)
	}
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	message := `🛠 *ETF Advisor operator bot*

/run - Trigger a pipeline tick manually
/metrics - Show the latest tick metrics
/health - Database and analyzer health
/help - Show this message`
	_, err := t.telegram.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}

func (t *TelegramBotHandler) handleRun(ctx context.Context, c telebot.Context) error {
	if _, err := t.telegram.Send(ctx, c, "⏳ Running pipeline tick..."); err != nil {
		return err
	}

	tick, err := t.service.SchedulerService.RunTick(ctx)
	if err != nil {
		if errors.Is(err, service.ErrTickInProgress) {
			_, sendErr := t.telegram.Send(ctx, c, "⚠️ A tick is already running, trigger skipped.")
			return sendErr
		}
		t.log.ErrorContext(ctx, "Manual tick failed", logger.ErrorField(err))
		_, sendErr := t.telegram.Send(ctx, c, "📛 Tick failed: "+err.Error())
		return sendErr
	}

	_, err = t.telegram.Send(ctx, c, t.formatTick(tick))
	return err
}

func (t *TelegramBotHandler) handleMetrics(ctx context.Context, c telebot.Context) error {
	tick, err := t.service.SchedulerService.LatestTick(ctx)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to load latest tick", logger.ErrorField(err))
		_, sendErr := t.telegram.Send(ctx, c, "📛 Failed to load tick metrics.")
		return sendErr
	}
	if tick == nil {
		_, sendErr := t.telegram.Send(ctx, c, "No tick has run yet.")
		return sendErr
	}

	_, err = t.telegram.Send(ctx, c, t.formatTick(tick))
	return err
}

func (t *TelegramBotHandler) handleHealth(ctx context.Context, c telebot.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dbOK := t.db.Ping(pingCtx) == nil
	message := pkgTelegram.FormatHealthForTelegram(dbOK, t.analyzerRepo.BreakerState(), time.Now())

	_, err := t.telegram.Send(ctx, c, message)
	return err
}
