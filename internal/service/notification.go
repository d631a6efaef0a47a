package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/model"
	"etf-advisor/internal/repository"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/utils"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("resource belongs to another user")
)

// NotificationService backs the notification REST surface: listing, read
// state, per-user settings, and the test notification.
type NotificationService interface {
	List(ctx context.Context, param *model.GetNotificationParam) ([]model.Notification, error)
	Count(ctx context.Context, param *model.GetNotificationParam) (int64, error)
	GetByID(ctx context.Context, userID, id uint) (*model.Notification, error)
	MarkRead(ctx context.Context, userID, id uint) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, userID, id uint) error
	GetSettings(ctx context.Context, userID uint) (*model.InvestmentSettings, error)
	UpdateSettings(ctx context.Context, req *dto.UpdateNotificationSettingsRequest) (*model.InvestmentSettings, error)
	SendTest(ctx context.Context, userID uint, title, content string) (*model.Notification, error)
}

type notificationService struct {
	log              *logger.Logger
	uow              repository.UnitOfWork
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	dispatcher       DispatcherService
}

func NewNotificationService(
	log *logger.Logger,
	uow repository.UnitOfWork,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	dispatcher DispatcherService,
) NotificationService {
	return &notificationService{
		log:              log,
		uow:              uow,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
	}
}

func (s *notificationService) List(ctx context.Context, param *model.GetNotificationParam) ([]model.Notification, error) {
	if param.Limit <= 0 {
		param.Limit = dto.DefaultNotificationLimit
	}
	if param.Limit > dto.MaxNotificationLimit {
		param.Limit = dto.MaxNotificationLimit
	}
	return s.notificationRepo.Get(ctx, param)
}

func (s *notificationService) Count(ctx context.Context, param *model.GetNotificationParam) (int64, error) {
	return s.notificationRepo.Count(ctx, param)
}

func (s *notificationService) GetByID(ctx context.Context, userID, id uint) (*model.Notification, error) {
	return s.getOwned(ctx, userID, id)
}

// getOwned loads one notification and enforces ownership. Opts carry the
// transaction when called under the unit of work.
func (s *notificationService) getOwned(ctx context.Context, userID, id uint, opts ...utils.DBOption) (*model.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, ErrNotFound
	}
	if notification.UserID != userID {
		return nil, ErrForbidden
	}
	return notification, nil
}

// MarkRead performs the ownership check and the write in one transaction so a
// concurrent delete cannot slip between them.
func (s *notificationService) MarkRead(ctx context.Context, userID, id uint) (*model.Notification, error) {
	var notification *model.Notification
	err := s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		owned, err := s.getOwned(ctx, userID, id, opts...)
		if err != nil {
			return err
		}
		if err := s.notificationRepo.MarkRead(ctx, owned, opts...); err != nil {
			return fmt.Errorf("failed to mark notification read: %w", err)
		}
		notification = owned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, id uint) error {
	return s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if _, err := s.getOwned(ctx, userID, id, opts...); err != nil {
			return err
		}
		return s.notificationRepo.Delete(ctx, id, opts...)
	})
}

func (s *notificationService) GetSettings(ctx context.Context, userID uint) (*model.InvestmentSettings, error) {
	settings, err := s.userRepo.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, ErrNotFound
	}
	return settings, nil
}

// UpdateSettings runs the read-modify-write under the unit of work so two
// concurrent updates cannot interleave and drop each other's fields.
func (s *notificationService) UpdateSettings(ctx context.Context, req *dto.UpdateNotificationSettingsRequest) (*model.InvestmentSettings, error) {
	var settings *model.InvestmentSettings
	err := s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		current, err := s.userRepo.GetSettings(ctx, req.UserID, opts...)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}

		if req.NotificationEnabled != nil {
			current.NotificationEnabled = *req.NotificationEnabled
		}
		if req.NotificationChannels != nil {
			current.NotificationChannels = strings.Join(req.NotificationChannels, ",")
		}

		if err := s.userRepo.UpdateSettings(ctx, current, opts...); err != nil {
			return fmt.Errorf("failed to update notification settings: %w", err)
		}
		settings = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *notificationService) SendTest(ctx context.Context, userID uint, title, content string) (*model.Notification, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if title == "" {
		title = "Test notification"
	}
	if content == "" {
		content = "This is a test notification from your ETF advisor."
	}

	notification, err := s.dispatcher.SendSystem(ctx, user, user.Settings, title, content)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		// Muted users get no record even for tests.
		return nil, nil
	}
	return notification, nil
}
