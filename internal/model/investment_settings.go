package model

import (
	"strings"
	"time"

	"etf-advisor/pkg/utils"
)

type InvestmentSettings struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	RiskLevel            int       `gorm:"not null;default:5" json:"risk_level"`
	Persona              string    `gorm:"type:text" json:"persona"`
	APIKey               string    `gorm:"type:varchar(255)" json:"-"`
	ModelType            string    `gorm:"type:varchar(50);default:gpt-4o" json:"model_type"`
	MonthlyInvestment    float64   `gorm:"default:0" json:"monthly_investment"`
	NotificationEnabled  bool      `gorm:"default:true" json:"notification_enabled"`
	NotificationChannels string    `gorm:"type:varchar(100);default:app" json:"notification_channels"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InvestmentSettings) TableName() string {
	return "investment_settings"
}

// Channels splits the comma separated channel list.
func (s *InvestmentSettings) Channels() []string {
	if s.NotificationChannels == "" {
		return nil
	}
	parts := strings.Split(s.NotificationChannels, ",")
	channels := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			channels = append(channels, trimmed)
		}
	}
	return channels
}

// HasChannel reports whether the given channel is enabled for this user.
func (s *InvestmentSettings) HasChannel(channel string) bool {
	return utils.ContainsString(s.Channels(), channel)
}
