package repository

import (
	"context"
	"database/sql"
	"time"

	"etf-advisor/internal/model"
	"etf-advisor/pkg/utils"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Notification, error)
	Get(ctx context.Context, param *model.GetNotificationParam, opts ...utils.DBOption) ([]model.Notification, error)
	Count(ctx context.Context, param *model.GetNotificationParam, opts ...utils.DBOption) (int64, error)
	MarkRead(ctx context.Context, notification *model.Notification, opts ...utils.DBOption) error
	MarkAllRead(ctx context.Context, userID uint, opts ...utils.DBOption) (int64, error)
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(notification).Error
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Notification, error) {
	var notification model.Notification
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.First(&notification, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &notification, nil
}

func (r *notificationRepository) Get(ctx context.Context, param *model.GetNotificationParam, opts ...utils.DBOption) ([]model.Notification, error) {
	var notifications []model.Notification
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("user_id = ?", param.UserID)

	if param.UnreadOnly {
		db = db.Where("is_read = ?", false)
	}

	db = utils.ApplyOptions(db,
		utils.WithOrder("created_at DESC"),
		utils.WithLimitOffset(param.Limit, param.Offset),
	)

	if err := db.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) Count(ctx context.Context, param *model.GetNotificationParam, opts ...utils.DBOption) (int64, error) {
	var count int64
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Notification{}).
		Where("user_id = ?", param.UserID)

	if param.UnreadOnly {
		db = db.Where("is_read = ?", false)
	}

	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips the read flag once; read_at keeps the first read time.
func (r *notificationRepository) MarkRead(ctx context.Context, notification *model.Notification, opts ...utils.DBOption) error {
	if notification.IsRead {
		return nil
	}

	notification.IsRead = true
	notification.ReadAt = sql.NullTime{Time: time.Now(), Valid: true}

	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(notification).
		Updates(map[string]interface{}{"is_read": true, "read_at": notification.ReadAt.Time}).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint, opts ...utils.DBOption) (int64, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Delete(&model.Notification{}, id).Error
}
