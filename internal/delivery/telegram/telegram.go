package telegram

import (
	"context"
	"strconv"
	"time"

	"etf-advisor/config"
	"etf-advisor/internal/repository"
	"etf-advisor/internal/service"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/postgres"
	"etf-advisor/pkg/telegram"

	"gopkg.in/telebot.v3"
)

// TelegramBotHandler is the operator surface: manual tick trigger, tick
// metrics, and a health probe, restricted to the configured admin chat.
type TelegramBotHandler struct {
	ctx          context.Context
	cfg          *config.Config
	bot          *telebot.Bot
	log          *logger.Logger
	telegram     *telegram.TelegramRateLimiter
	service      *service.Service
	db           *postgres.DB
	analyzerRepo repository.AnalyzerRepository
	adminChatID  int64
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	tg *telegram.TelegramRateLimiter,
	svc *service.Service,
	db *postgres.DB,
	analyzerRepo repository.AnalyzerRepository,
) *TelegramBotHandler {
	adminChatID, err := strconv.ParseInt(cfg.Telegram.ChatID, 10, 64)
	if err != nil {
		log.Warn("Invalid telegram chat id, operator commands disabled",
			logger.StringField("chat_id", cfg.Telegram.ChatID),
		)
	}
	return &TelegramBotHandler{
		ctx:          ctx,
		cfg:          cfg,
		log:          log,
		bot:          bot,
		telegram:     tg,
		service:      svc,
		db:           db,
		analyzerRepo: analyzerRepo,
		adminChatID:  adminChatID,
	}
}

func (t *TelegramBotHandler) Start() {
	if t.bot == nil {
		t.log.Info("Telegram bot token not configured, operator bot disabled")
		return
	}

	t.log.Info("Starting Telegram operator bot")
	t.RegisterHandlers()
	t.telegram.StartCleanupExpired(t.ctx)
	t.bot.Start()
}

func (t *TelegramBotHandler) Stop() {
	if t.bot == nil {
		return
	}
	t.log.Info("Stopping Telegram operator bot")

	// The root context is already cancelled during shutdown; the grace
	// period needs its own clock.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{}, 1)
	go func() {
		t.bot.Stop()
		stopDone <- struct{}{}
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram operator bot stopped")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping Telegram bot, forcing shutdown")
	}

	t.telegram.StopCleanupExpired()
}
