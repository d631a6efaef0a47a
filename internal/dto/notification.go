package dto

import (
	"time"

	"etf-advisor/internal/model"
)

type ListNotificationsRequest struct {
	UserID     uint `query:"user_id" validate:"required"`
	Skip       int  `query:"skip" validate:"gte=0"`
	Limit      int  `query:"limit" validate:"gte=0,lte=100"`
	UnreadOnly bool `query:"unread_only"`
}

type NotificationCountResponse struct {
	Count int64 `json:"count"`
}

type NotificationSettingsResponse struct {
	NotificationEnabled  bool     `json:"notification_enabled"`
	NotificationChannels []string `json:"notification_channels"`
}

type UpdateNotificationSettingsRequest struct {
	UserID               uint     `json:"user_id" validate:"required"`
	NotificationEnabled  *bool    `json:"notification_enabled"`
	NotificationChannels []string `json:"notification_channels" validate:"omitempty,dive,oneof=app email sms"`
}

type TestNotificationRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ChatRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

type ChatResponse struct {
	Answer         string  `json:"answer"`
	ProcessingTime float64 `json:"processing_time"`
}

type NotificationResponse struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Type      string     `json:"type"`
	IsRead    bool       `json:"is_read"`
	SentVia   string     `json:"sent_via"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

func ToNotificationResponse(n *model.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		Type:      n.Type,
		IsRead:    n.IsRead,
		SentVia:   n.SentVia,
		CreatedAt: n.CreatedAt,
	}
	if n.ReadAt.Valid {
		resp.ReadAt = &n.ReadAt.Time
	}
	return resp
}

func ToNotificationResponses(items []model.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToNotificationResponse(&items[i]))
	}
	return responses
}
