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

type AnalysisHistoryRepository interface {
	Create(ctx context.Context, history *model.AnalysisHistory, opts ...utils.DBOption) error
	GetLatest(ctx context.Context, userID uint, portfolioKey string, opts ...utils.DBOption) (*model.AnalysisHistory, error)
	Get(ctx context.Context, param *model.GetAnalysisHistoryParam, opts ...utils.DBOption) ([]model.AnalysisHistory, error)
}

type analysisHistoryRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewAnalysisHistoryRepository(db *gorm.DB, c cache.Cache) AnalysisHistoryRepository {
	return &analysisHistoryRepository{db: db, cache: c}
}

func (r *analysisHistoryRepository) Create(ctx context.Context, history *model.AnalysisHistory, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Create(history).Error; err != nil {
		return err
	}

	key := fmt.Sprintf(common.KEY_LATEST_ANALYSIS, history.UserID, history.PortfolioKey)
	r.cache.SetDefault(key, history)
	return nil
}

// GetLatest returns the most recent analysis for the (user, portfolio) pair,
// or nil when the pair has never been analyzed.
func (r *analysisHistoryRepository) GetLatest(ctx context.Context, userID uint, portfolioKey string, opts ...utils.DBOption) (*model.AnalysisHistory, error) {
	key := fmt.Sprintf(common.KEY_LATEST_ANALYSIS, userID, portfolioKey)
	if cached, found := cache.GetFromCache[*model.AnalysisHistory](key); found {
		return cached, nil
	}

	var history model.AnalysisHistory
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("user_id = ? AND portfolio_key = ?", userID, portfolioKey).
		Order("created_at DESC").
		First(&history)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	r.cache.SetDefault(key, &history)
	return &history, nil
}

func (r *analysisHistoryRepository) Get(ctx context.Context, param *model.GetAnalysisHistoryParam, opts ...utils.DBOption) ([]model.AnalysisHistory, error) {
	var histories []model.AnalysisHistory
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if param.UserID > 0 {
		db = db.Where("user_id = ?", param.UserID)
	}
	if param.PortfolioKey != "" {
		db = db.Where("portfolio_key = ?", param.PortfolioKey)
	}

	db = db.Order("created_at DESC")
	if param.Limit > 0 {
		db = db.Limit(param.Limit)
	}

	if err := db.Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}
