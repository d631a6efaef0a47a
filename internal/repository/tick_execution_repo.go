package repository

import (
	"context"

	"etf-advisor/internal/model"
	"etf-advisor/pkg/cache"
	"etf-advisor/pkg/common"
	"etf-advisor/pkg/utils"

	"gorm.io/gorm"
)

type TickExecutionRepository interface {
	Create(ctx context.Context, tick *model.TickExecution, opts ...utils.DBOption) error
	Update(ctx context.Context, tick *model.TickExecution, opts ...utils.DBOption) error
	GetLatest(ctx context.Context, opts ...utils.DBOption) (*model.TickExecution, error)
}

type tickExecutionRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewTickExecutionRepository(db *gorm.DB, c cache.Cache) TickExecutionRepository {
	return &tickExecutionRepository{db: db, cache: c}
}

func (r *tickExecutionRepository) Create(ctx context.Context, tick *model.TickExecution, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(tick).Error
}

func (r *tickExecutionRepository) Update(ctx context.Context, tick *model.TickExecution, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Save(tick).Error; err != nil {
		return err
	}

	r.cache.SetDefault(common.KEY_LATEST_TICK, tick)
	return nil
}

func (r *tickExecutionRepository) GetLatest(ctx context.Context, opts ...utils.DBOption) (*model.TickExecution, error) {
	if cached, found := cache.GetFromCache[*model.TickExecution](common.KEY_LATEST_TICK); found {
		return cached, nil
	}

	var tick model.TickExecution
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Order("started_at DESC").First(&tick)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &tick, nil
}
