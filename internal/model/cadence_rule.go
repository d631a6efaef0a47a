package model

import "time"

// CadenceRule is one recurring investment plan entry: which instrument a user
// buys, how much, and on which calendar cycle.
type CadenceRule struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	InstrumentID uint      `gorm:"not null" json:"instrument_id"`
	Cycle        string    `gorm:"type:varchar(20);not null" json:"cycle"`
	Day          int       `gorm:"not null;default:0" json:"day"`
	Amount       float64   `gorm:"not null;default:0" json:"amount"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User       User       `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Instrument Instrument `gorm:"foreignKey:InstrumentID;references:ID" json:"instrument,omitempty"`
}

func (CadenceRule) TableName() string {
	return "cadence_rules"
}

type GetCadenceRuleParam struct {
	UserIDs     []uint `json:"user_ids"`
	Cycles      []string
	WithUser    bool
	WithSetting bool
}
