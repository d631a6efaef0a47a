package model

import (
	"database/sql"
	"time"
)

const (
	NotificationTypeInvestmentReminder = "investment_reminder"
	NotificationTypeAIAnalysis         = "ai_analysis"
	NotificationTypeSystem             = "system"
	NotificationTypePortfolioAnalysis  = "portfolio_analysis"
)

const (
	NotificationChannelApp   = "app"
	NotificationChannelEmail = "email"
	NotificationChannelSMS   = "sms"
)

type Notification struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;index" json:"user_id"`
	Title     string       `gorm:"type:varchar(255);not null" json:"title"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	Type      string       `gorm:"type:varchar(50);not null" json:"type"`
	IsRead    bool         `gorm:"not null;default:false" json:"is_read"`
	SentVia   string       `gorm:"type:varchar(20);not null;default:app" json:"sent_via"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	ReadAt    sql.NullTime `json:"read_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

type GetNotificationParam struct {
	UserID     uint
	UnreadOnly bool
	Limit      int
	Offset     int
}
