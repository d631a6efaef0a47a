package repository

import (
	"context"

	"etf-advisor/internal/model"
	"etf-advisor/pkg/utils"

	"gorm.io/gorm"
)

type CadenceRuleRepository interface {
	Get(ctx context.Context, param *model.GetCadenceRuleParam, opts ...utils.DBOption) ([]model.CadenceRule, error)
	GetByUserID(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.CadenceRule, error)
}

type cadenceRuleRepository struct {
	db *gorm.DB
}

func NewCadenceRuleRepository(db *gorm.DB) CadenceRuleRepository {
	return &cadenceRuleRepository{db: db}
}

func (r *cadenceRuleRepository) Get(ctx context.Context, param *model.GetCadenceRuleParam, opts ...utils.DBOption) ([]model.CadenceRule, error) {
	var rules []model.CadenceRule
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if len(param.UserIDs) > 0 {
		db = db.Where("user_id IN ?", param.UserIDs)
	}
	if len(param.Cycles) > 0 {
		db = db.Where("cycle IN ?", param.Cycles)
	}
	if param.WithUser {
		db = db.Preload("User")
	}
	if param.WithSetting {
		db = db.Preload("User.Settings")
	}

	result := db.Preload("Instrument").Find(&rules)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return rules, nil
}

func (r *cadenceRuleRepository) GetByUserID(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.CadenceRule, error) {
	return r.Get(ctx, &model.GetCadenceRuleParam{UserIDs: []uint{userID}}, opts...)
}
