package service

import (
	"context"

	"etf-advisor/internal/model"
	"etf-advisor/internal/repository"
	"etf-advisor/pkg/logger"
)

// InstrumentService exposes the ETF catalog users pick their plans from.
type InstrumentService interface {
	List(ctx context.Context) ([]model.Instrument, error)
	GetBySymbol(ctx context.Context, symbol string) (*model.Instrument, error)
}

type instrumentService struct {
	log            *logger.Logger
	instrumentRepo repository.InstrumentRepository
}

func NewInstrumentService(log *logger.Logger, instrumentRepo repository.InstrumentRepository) InstrumentService {
	return &instrumentService{
		log:            log,
		instrumentRepo: instrumentRepo,
	}
}

func (s *instrumentService) List(ctx context.Context) ([]model.Instrument, error) {
	return s.instrumentRepo.GetAll(ctx)
}

func (s *instrumentService) GetBySymbol(ctx context.Context, symbol string) (*model.Instrument, error) {
	instrument, err := s.instrumentRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if instrument == nil {
		return nil, ErrNotFound
	}
	return instrument, nil
}
