package service

import (
	"etf-advisor/config"
	"etf-advisor/internal/repository"
	"etf-advisor/internal/scoring"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/mailer"
)

type Service struct {
	CalendarService     CalendarService
	BatcherService      BatcherService
	DispatcherService   DispatcherService
	SchedulerService    SchedulerService
	ChatService         ChatService
	NotificationService NotificationService
	InstrumentService   InstrumentService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	m mailer.Mailer,
) *Service {
	scorer := scoring.NewScorer(log)

	calendarService := NewCalendarService(log, repo.CadenceRuleRepo, repo.InstrumentRepo)
	batcherService := NewBatcherService(log, repo.AnalyzerRepo, repo.AnalysisHistoryRepo)
	dispatcherService := NewDispatcherService(cfg, log, m, repo.NotificationRepo)
	schedulerService := NewSchedulerService(cfg, log, calendarService, batcherService, dispatcherService, scorer, repo.TickExecutionRepo)
	chatService := NewChatService(log, repo.UserRepo, repo.CadenceRuleRepo, repo.AnalyzerRepo)
	notificationService := NewNotificationService(log, repo.UnitOfWork, repo.UserRepo, repo.NotificationRepo, dispatcherService)
	instrumentService := NewInstrumentService(log, repo.InstrumentRepo)

	return &Service{
		CalendarService:     calendarService,
		BatcherService:      batcherService,
		DispatcherService:   dispatcherService,
		SchedulerService:    schedulerService,
		ChatService:         chatService,
		NotificationService: notificationService,
		InstrumentService:   instrumentService,
	}
}
