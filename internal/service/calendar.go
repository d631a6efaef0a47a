package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/model"
	"etf-advisor/internal/repository"
	"etf-advisor/pkg/common"
	"etf-advisor/pkg/logger"
)

type CalendarService interface {
	// ResolveDue returns every notification-enabled user whose cadence rules
	// fire on the given date, with all of that user's due rules grouped.
	ResolveDue(ctx context.Context, date time.Time) ([]dto.DueUser, error)
}

type calendarService struct {
	log            *logger.Logger
	cadenceRepo    repository.CadenceRuleRepository
	instrumentRepo repository.InstrumentRepository
}

func NewCalendarService(
	log *logger.Logger,
	cadenceRepo repository.CadenceRuleRepository,
	instrumentRepo repository.InstrumentRepository,
) CalendarService {
	return &calendarService{
		log:            log,
		cadenceRepo:    cadenceRepo,
		instrumentRepo: instrumentRepo,
	}
}

func (s *calendarService) ResolveDue(ctx context.Context, date time.Time) ([]dto.DueUser, error) {
	rules, err := s.cadenceRepo.Get(ctx, &model.GetCadenceRuleParam{
		WithUser:    true,
		WithSetting: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load cadence rules: %w", err)
	}

	grouped := make(map[uint]*dto.DueUser)
	order := []uint{}

	for _, rule := range rules {
		if !ruleIsDue(&rule, date) {
			continue
		}

		if rule.User.ID == 0 {
			s.log.WarnContext(ctx, "Skipping rule without owner",
				logger.IntField("rule_id", int(rule.ID)),
				logger.IntField("user_id", int(rule.UserID)),
			)
			continue
		}
		settings := rule.User.Settings
		if settings == nil || !settings.NotificationEnabled {
			s.log.DebugContext(ctx, "Skipping rule for muted user",
				logger.IntField("rule_id", int(rule.ID)),
				logger.IntField("user_id", int(rule.UserID)),
			)
			continue
		}

		instrument, err := s.instrumentRepo.GetByID(ctx, rule.InstrumentID)
		if err != nil || instrument == nil {
			s.log.WarnContext(ctx, "Skipping rule with unknown instrument",
				logger.IntField("rule_id", int(rule.ID)),
				logger.IntField("instrument_id", int(rule.InstrumentID)),
				logger.ErrorField(err),
			)
			continue
		}

		due, ok := grouped[rule.UserID]
		if !ok {
			due = &dto.DueUser{
				User:     rule.User,
				Settings: settings,
			}
			grouped[rule.UserID] = due
			order = append(order, rule.UserID)
		}
		due.Rules = append(due.Rules, dto.DueRule{
			Rule:       rule,
			Instrument: *instrument,
		})
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	dueUsers := make([]dto.DueUser, 0, len(order))
	for _, userID := range order {
		due := grouped[userID]
		// Stable instrument ordering keeps prompts reproducible.
		sort.Slice(due.Rules, func(i, j int) bool {
			return due.Rules[i].Instrument.Symbol < due.Rules[j].Instrument.Symbol
		})
		dueUsers = append(dueUsers, *due)
	}

	return dueUsers, nil
}

// ruleIsDue evaluates the cadence predicate for one date. Weekly rules use
// the Monday=0..Sunday=6 numbering stored on the rule; monthly rules match
// the literal day-of-month, so day=31 never fires in a shorter month.
func ruleIsDue(rule *model.CadenceRule, date time.Time) bool {
	switch rule.Cycle {
	case common.CYCLE_DAILY:
		return true
	case common.CYCLE_WEEKLY:
		return rule.Day == mondayBasedWeekday(date)
	case common.CYCLE_MONTHLY:
		return rule.Day == date.Day()
	default:
		return false
	}
}

func mondayBasedWeekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}
