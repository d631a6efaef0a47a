package model

import (
	"database/sql"
	"time"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"not null" json:"username"`
	Email     sql.NullString `gorm:"type:varchar(255)" json:"email"`
	FullName  string         `json:"full_name"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Settings *InvestmentSettings `gorm:"foreignKey:UserID" json:"settings,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName returns the name used in prompts and email greetings.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
