package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"etf-advisor/config"
	"etf-advisor/internal/dto"
	"etf-advisor/internal/model"
	"etf-advisor/internal/repository"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/mailer"
)

type DispatcherService interface {
	// Dispatch persists and delivers one notification, honoring the user's
	// notification settings. Muted users produce zero side effects.
	Dispatch(ctx context.Context, user *model.User, settings *model.InvestmentSettings, category, title, content string) (*model.Notification, error)

	SendAIAnalysis(ctx context.Context, due *dto.DueUser, analysis string) (*model.Notification, error)
	SendInvestmentReminder(ctx context.Context, due *dto.DueUser) (*model.Notification, error)
	SendSystem(ctx context.Context, user *model.User, settings *model.InvestmentSettings, title, content string) (*model.Notification, error)
}

type dispatcherService struct {
	cfg              *config.Config
	log              *logger.Logger
	mailer           mailer.Mailer
	notificationRepo repository.NotificationRepository
}

func NewDispatcherService(
	cfg *config.Config,
	log *logger.Logger,
	m mailer.Mailer,
	notificationRepo repository.NotificationRepository,
) DispatcherService {
	return &dispatcherService{
		cfg:              cfg,
		log:              log,
		mailer:           m,
		notificationRepo: notificationRepo,
	}
}

func (s *dispatcherService) Dispatch(ctx context.Context, user *model.User, settings *model.InvestmentSettings, category, title, content string) (*model.Notification, error) {
	if user == nil {
		return nil, errors.New("dispatch requires a user")
	}
	if settings == nil || !settings.NotificationEnabled {
		s.log.DebugContext(ctx, "Notification muted",
			logger.IntField("user_id", int(user.ID)),
			logger.StringField("category", category),
		)
		return nil, nil
	}

	sentVia := model.NotificationChannelApp
	if settings.HasChannel(model.NotificationChannelEmail) && user.Email.Valid && user.Email.String != "" {
		if err := s.sendEmail(ctx, user, title, content); err != nil {
			// Channel failure downgrades the record, it never aborts dispatch.
			s.log.WarnContext(ctx, "Email delivery failed, falling back to in-app",
				logger.IntField("user_id", int(user.ID)),
				logger.ErrorField(err),
			)
		} else {
			sentVia = model.NotificationChannelEmail
		}
	}

	notification := &model.Notification{
		UserID:  user.ID,
		Title:   title,
		Content: content,
		Type:    category,
		SentVia: sentVia,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	s.log.InfoContext(ctx, "Notification dispatched",
		logger.IntField("user_id", int(user.ID)),
		logger.StringField("category", category),
		logger.StringField("sent_via", sentVia),
	)
	return notification, nil
}

// sendEmail bounds the channel call with its own timeout so a stalled email
// backend cannot hold up the rest of the tick.
func (s *dispatcherService) sendEmail(ctx context.Context, user *model.User, title, content string) error {
	timeout := s.cfg.Mailer.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	html := mailer.RenderNotificationHTML(title, content)
	return s.mailer.Send(sendCtx, user.Email.String, user.DisplayName(), title, html)
}

func (s *dispatcherService) SendAIAnalysis(ctx context.Context, due *dto.DueUser, analysis string) (*model.Notification, error) {
	category := model.NotificationTypeAIAnalysis
	title := "AI Analysis: " + due.PortfolioKey()
	if len(due.Rules) > 1 {
		category = model.NotificationTypePortfolioAnalysis
		title = fmt.Sprintf("Portfolio Analysis: %d instruments due today", len(due.Rules))
	}
	return s.Dispatch(ctx, &due.User, due.Settings, category, title, analysis)
}

func (s *dispatcherService) SendInvestmentReminder(ctx context.Context, due *dto.DueUser) (*model.Notification, error) {
	var sb strings.Builder
	sb.WriteString("Your scheduled investments for today:\n\n")
	for _, r := range due.Rules {
		sb.WriteString(fmt.Sprintf("%s (%s): $%.2f\n", r.Instrument.Symbol, r.Instrument.Name, r.Rule.Amount))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: $%.2f", due.TotalAmount()))

	title := fmt.Sprintf("Investment reminder: %s due today", due.PortfolioKey())
	return s.Dispatch(ctx, &due.User, due.Settings, model.NotificationTypeInvestmentReminder, title, sb.String())
}

func (s *dispatcherService) SendSystem(ctx context.Context, user *model.User, settings *model.InvestmentSettings, title, content string) (*model.Notification, error) {
	return s.Dispatch(ctx, user, settings, model.NotificationTypeSystem, title, content)
}
