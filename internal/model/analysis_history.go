package model

import "time"

// AnalysisHistory stores the raw analyzer answer per user and portfolio so
// follow-up prompts can reference the previous assessment.
type AnalysisHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	PortfolioKey string    `gorm:"type:varchar(255);not null;index" json:"portfolio_key"`
	Analysis     string    `gorm:"type:text;not null" json:"analysis"`
	ModelType    string    `gorm:"type:varchar(50)" json:"model_type"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AnalysisHistory) TableName() string {
	return "analysis_histories"
}

type GetAnalysisHistoryParam struct {
	UserID       uint
	PortfolioKey string
	Limit        int
}
