package repository

import (
	"etf-advisor/config"
	"etf-advisor/pkg/cache"
	"etf-advisor/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	UserRepo            UserRepository
	InstrumentRepo      InstrumentRepository
	CadenceRuleRepo     CadenceRuleRepository
	NotificationRepo    NotificationRepository
	AnalysisHistoryRepo AnalysisHistoryRepository
	TickExecutionRepo   TickExecutionRepository
	AnalyzerRepo        AnalyzerRepository
	UnitOfWork          UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, c cache.Cache, log *logger.Logger) (*Repository, error) {
	uow := NewUnitOfWork(db)

	return &Repository{
		UserRepo:            NewUserRepository(db),
		InstrumentRepo:      NewInstrumentRepository(db, c),
		CadenceRuleRepo:     NewCadenceRuleRepository(db),
		NotificationRepo:    NewNotificationRepository(db),
		AnalysisHistoryRepo: NewAnalysisHistoryRepository(db, c),
		TickExecutionRepo:   NewTickExecutionRepository(db, c),
		AnalyzerRepo:        NewAnalyzerRepository(cfg, log),
		UnitOfWork:          uow,
	}, nil
}
