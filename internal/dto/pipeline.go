package dto

import (
	"strings"
	"time"

	"etf-advisor/internal/model"
)

// DueRule pairs a cadence rule with its resolved instrument.
type DueRule struct {
	Rule       model.CadenceRule
	Instrument model.Instrument
}

// DueUser groups everything the pipeline needs for one user on one evaluation
// date: the user, their settings, and every rule due that day ordered by
// instrument symbol.
type DueUser struct {
	User     model.User
	Settings *model.InvestmentSettings
	Rules    []DueRule
}

func (d *DueUser) Symbols() []string {
	symbols := make([]string, 0, len(d.Rules))
	for _, r := range d.Rules {
		symbols = append(symbols, r.Instrument.Symbol)
	}
	return symbols
}

// PortfolioKey identifies the due cohort portfolio, e.g. "QQQ,SPY".
func (d *DueUser) PortfolioKey() string {
	return strings.Join(d.Symbols(), ",")
}

func (d *DueUser) TotalAmount() float64 {
	var total float64
	for _, r := range d.Rules {
		total += r.Rule.Amount
	}
	return total
}

// AnalysisResult carries one user's analyzer answer into scoring.
type AnalysisResult struct {
	UserID         uint
	Answer         string
	ProcessingTime float64
}

// TickSummary is the metrics payload persisted on a TickExecution row.
type TickSummary struct {
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	DurationMS       int64     `json:"duration_ms"`
	UsersTotal       int       `json:"users_total"`
	UsersProcessed   int       `json:"users_processed"`
	UsersFailed      int       `json:"users_failed"`
	AnalyzedCount    int       `json:"analyzed_count"`
	NotifiedCount    int       `json:"notified_count"`
	AvgUserLatencyMS float64   `json:"avg_user_latency_ms"`
	ThroughputPerSec float64   `json:"throughput_per_sec"`
}
