package repository

import (
	"context"
	"fmt"

	"etf-advisor/internal/model"
	"etf-advisor/pkg/cache"
	"etf-advisor/pkg/common"
	"etf-advisor/pkg/utils"

	"gorm.io/gorm"
)

type InstrumentRepository interface {
	GetAll(ctx context.Context, opts ...utils.DBOption) ([]model.Instrument, error)
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Instrument, error)
	GetBySymbol(ctx context.Context, symbol string, opts ...utils.DBOption) (*model.Instrument, error)
}

type instrumentRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewInstrumentRepository(db *gorm.DB, c cache.Cache) InstrumentRepository {
	return &instrumentRepository{
		db:    db,
		cache: c,
	}
}

func (r *instrumentRepository) GetAll(ctx context.Context, opts ...utils.DBOption) ([]model.Instrument, error) {
	var instruments []model.Instrument
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.Order("symbol ASC").Find(&instruments).Error; err != nil {
		return nil, err
	}
	return instruments, nil
}

// GetByID serves the instrument from cache when possible. Catalog rows are
// immutable so a plain expiry is enough.
func (r *instrumentRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Instrument, error) {
	key := fmt.Sprintf(common.KEY_INSTRUMENT_BY_ID, id)
	if cached, found := cache.GetFromCache[*model.Instrument](key); found {
		return cached, nil
	}

	var instrument model.Instrument
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.First(&instrument, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	r.cache.SetDefault(key, &instrument)
	return &instrument, nil
}

func (r *instrumentRepository) GetBySymbol(ctx context.Context, symbol string, opts ...utils.DBOption) (*model.Instrument, error) {
	key := fmt.Sprintf(common.KEY_INSTRUMENT_BY_SYMBOL, symbol)
	if cached, found := cache.GetFromCache[*model.Instrument](key); found {
		return cached, nil
	}

	var instrument model.Instrument
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.Where("symbol = ?", symbol).First(&instrument)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	r.cache.SetDefault(key, &instrument)
	return &instrument, nil
}
