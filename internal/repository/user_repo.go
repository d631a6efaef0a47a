package repository

import (
	"context"

	"etf-advisor/internal/model"
	"etf-advisor/pkg/utils"

	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error)
	GetSettings(ctx context.Context, userID uint, opts ...utils.DBOption) (*model.InvestmentSettings, error)
	UpdateSettings(ctx context.Context, settings *model.InvestmentSettings, opts ...utils.DBOption) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

// GetByID returns the user with settings preloaded, or nil when not found.
func (r *userRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error) {
	var user model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), append(opts, utils.WithPreload("Settings"))...)

	result := tx.First(&user, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &user, nil
}

func (r *userRepository) GetSettings(ctx context.Context, userID uint, opts ...utils.DBOption) (*model.InvestmentSettings, error) {
	var settings model.InvestmentSettings
	tx := utils.ApplyOptions(r.db.WithContext(ctx), append(opts, utils.WithWhere("user_id = ?", userID))...)

	result := tx.First(&settings)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &settings, nil
}

func (r *userRepository) UpdateSettings(ctx context.Context, settings *model.InvestmentSettings, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Save(settings).Error
}
