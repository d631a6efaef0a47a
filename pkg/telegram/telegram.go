package telegram

import (
	"context"
	"sync"
	"time"

	"etf-advisor/config"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/utils"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

type chatLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// TelegramRateLimiter paces outbound bot traffic: one global limiter for the
// Bot API budget plus one limiter per chat.
type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	globalLimiter *rate.Limiter
	chatLimiters  map[int64]*chatLimiterEntry
	bot           *telebot.Bot
	mu            sync.Mutex
	wg            sync.WaitGroup
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, bot *telebot.Bot) *TelegramRateLimiter {
	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.MaxGlobalRequestPerSecond), cfg.MaxGlobalRequestPerSecond),
		chatLimiters:  make(map[int64]*chatLimiterEntry),
	}
}

// Send replies within a command context.
func (t *TelegramRateLimiter) Send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, c.Chat().ID); err != nil {
		return nil, err
	}
	return t.bot.Send(c.Chat(), what, opts...)
}

// SendMessageChat pushes a message to a chat outside any command context.
func (t *TelegramRateLimiter) SendMessageChat(ctx context.Context, message string, chatID int64, opts ...interface{}) error {
	if err := t.checkRateLimit(ctx, chatID); err != nil {
		return err
	}
	_, err := t.bot.Send(&telebot.Chat{ID: chatID}, message, opts...)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to send telegram message", logger.ErrorField(err))
		return err
	}
	return nil
}

func (t *TelegramRateLimiter) getChatLimiter(chatID int64) *chatLimiterEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limiter, exists := t.chatLimiters[chatID]; exists {
		limiter.lastAccess = time.Now()
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(t.cfg.MaxUserRequestPerSecond), t.cfg.MaxUserRequestPerSecond)
	t.chatLimiters[chatID] = &chatLimiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return t.chatLimiters[chatID]
}

func (t *TelegramRateLimiter) checkRateLimit(ctx context.Context, chatID int64) error {
	chatLimiter := t.getChatLimiter(chatID)

	if err := t.globalLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	if err := chatLimiter.limiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for chat rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

func (t *TelegramRateLimiter) StartCleanupExpired(ctx context.Context) {
	t.wg.Add(1)
	utils.GoSafe(func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.cfg.RateLimitCleanupDuration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.log.Info("Received signal to stop Telegram rate limiter cleanup expired")
				return
			case <-ticker.C:
				t.mu.Lock()
				now := time.Now()
				for chatID, entry := range t.chatLimiters {
					if now.Sub(entry.lastAccess) > t.cfg.RatelimitExpireDuration {
						delete(t.chatLimiters, chatID)
					}
				}
				t.mu.Unlock()
			}
		}
	})
}

func (t *TelegramRateLimiter) StopCleanupExpired() {
	t.wg.Wait()
	t.log.Info("Telegram rate limiter stopped")
}
