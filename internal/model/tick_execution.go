package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

type TickExecutionStatus string

const (
	TickStatusRunning   TickExecutionStatus = "running"
	TickStatusCompleted TickExecutionStatus = "completed"
	TickStatusFailed    TickExecutionStatus = "failed"
)

// TickExecution records one pipeline run and its metrics. Metrics are written
// even when the tick fails part way.
type TickExecution struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	StartedAt      time.Time `gorm:"not null" json:"started_at"`
	CompletedAt    sql.NullTime
	Status         TickExecutionStatus `gorm:"type:varchar(20);not null" json:"status"`
	UsersTotal     int                 `gorm:"not null;default:0" json:"users_total"`
	UsersProcessed int                 `gorm:"not null;default:0" json:"users_processed"`
	NotifiedCount  int                 `gorm:"not null;default:0" json:"notified_count"`
	ErrorMessage   sql.NullString      `gorm:"type:text"`
	Summary        datatypes.JSON      `gorm:"type:jsonb" json:"summary"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (TickExecution) TableName() string {
	return "tick_executions"
}
