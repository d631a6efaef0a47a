package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"etf-advisor/internal/model"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCadenceRepo struct {
	rules []model.CadenceRule
	err   error
}

func (f *fakeCadenceRepo) Get(ctx context.Context, param *model.GetCadenceRuleParam, opts ...utils.DBOption) ([]model.CadenceRule, error) {
	return f.rules, f.err
}

func (f *fakeCadenceRepo) GetByUserID(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.CadenceRule, error) {
	var out []model.CadenceRule
	for _, r := range f.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, f.err
}

type fakeInstrumentRepo struct {
	byID map[uint]*model.Instrument
}

func (f *fakeInstrumentRepo) GetAll(ctx context.Context, opts ...utils.DBOption) ([]model.Instrument, error) {
	var out []model.Instrument
	for _, i := range f.byID {
		out = append(out, *i)
	}
	return out, nil
}

func (f *fakeInstrumentRepo) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Instrument, error) {
	return f.byID[id], nil
}

func (f *fakeInstrumentRepo) GetBySymbol(ctx context.Context, symbol string, opts ...utils.DBOption) (*model.Instrument, error) {
	for _, i := range f.byID {
		if i.Symbol == symbol {
			return i, nil
		}
	}
	return nil, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func enabledUser(id uint, name string) model.User {
	return model.User{
		ID:       id,
		Username: name,
		Settings: &model.InvestmentSettings{
			UserID:              id,
			RiskLevel:           5,
			NotificationEnabled: true,
		},
	}
}

func testRule(id, userID, instrumentID uint, cycle string, day int, user model.User) model.CadenceRule {
	return model.CadenceRule{
		ID:           id,
		UserID:       userID,
		InstrumentID: instrumentID,
		Cycle:        cycle,
		Day:          day,
		Amount:       100,
		User:         user,
	}
}

func testInstruments() map[uint]*model.Instrument {
	return map[uint]*model.Instrument{
		1: {ID: 1, Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust"},
		2: {ID: 2, Symbol: "QQQ", Name: "Invesco QQQ Trust"},
	}
}

func TestCalendar_CadencePredicates(t *testing.T) {
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	user := enabledUser(1, "alice")

	tests := []struct {
		name string
		rule model.CadenceRule
		date time.Time
		due  bool
	}{
		{
			name: "daily always fires",
			rule: testRule(1, 1, 1, "daily", 0, user),
			date: monday,
			due:  true,
		},
		{
			name: "weekly fires on matching weekday",
			rule: testRule(2, 1, 1, "weekly", 0, user), // Monday in Monday=0 numbering
			date: monday,
			due:  true,
		},
		{
			name: "weekly skips other weekdays",
			rule: testRule(3, 1, 1, "weekly", 2, user),
			date: monday,
			due:  false,
		},
		{
			name: "monthly fires on matching day",
			rule: testRule(4, 1, 1, "monthly", 2, user),
			date: monday,
			due:  true,
		},
		{
			name: "monthly day 31 never fires in a 30 day month",
			rule: testRule(5, 1, 1, "monthly", 31, user),
			date: time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC), // June has 30 days
			due:  false,
		},
		{
			name: "unknown cycle never fires",
			rule: testRule(6, 1, 1, "yearly", 0, user),
			date: monday,
			due:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCalendarService(testLogger(t),
				&fakeCadenceRepo{rules: []model.CadenceRule{tt.rule}},
				&fakeInstrumentRepo{byID: testInstruments()},
			)
			due, err := svc.ResolveDue(context.Background(), tt.date)
			require.NoError(t, err)
			if tt.due {
				require.Len(t, due, 1)
				assert.Len(t, due[0].Rules, 1)
			} else {
				assert.Empty(t, due)
			}
		})
	}
}

func TestCalendar_PredicateIsPure(t *testing.T) {
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rule := testRule(1, 1, 1, "weekly", 0, enabledUser(1, "alice"))

	for i := 0; i < 3; i++ {
		assert.True(t, ruleIsDue(&rule, monday))
	}
}

func TestCalendar_GroupsRulesPerUserSortedBySymbol(t *testing.T) {
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	alice := enabledUser(1, "alice")
	bob := enabledUser(2, "bob")

	svc := NewCalendarService(testLogger(t),
		&fakeCadenceRepo{rules: []model.CadenceRule{
			testRule(1, 2, 2, "daily", 0, bob),
			testRule(2, 1, 1, "daily", 0, alice),
			testRule(3, 1, 2, "daily", 0, alice),
		}},
		&fakeInstrumentRepo{byID: testInstruments()},
	)

	due, err := svc.ResolveDue(context.Background(), monday)
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Users ordered by id, one entry per user with all due rules grouped.
	assert.Equal(t, uint(1), due[0].User.ID)
	require.Len(t, due[0].Rules, 2)
	assert.Equal(t, "QQQ", due[0].Rules[0].Instrument.Symbol)
	assert.Equal(t, "SPY", due[0].Rules[1].Instrument.Symbol)
	assert.Equal(t, "QQQ,SPY", due[0].PortfolioKey())

	assert.Equal(t, uint(2), due[1].User.ID)
	assert.Len(t, due[1].Rules, 1)
}

func TestCalendar_SkipsMutedUsers(t *testing.T) {
	muted := enabledUser(1, "muted")
	muted.Settings.NotificationEnabled = false

	svc := NewCalendarService(testLogger(t),
		&fakeCadenceRepo{rules: []model.CadenceRule{
			testRule(1, 1, 1, "daily", 0, muted),
		}},
		&fakeInstrumentRepo{byID: testInstruments()},
	)

	due, err := svc.ResolveDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestCalendar_SkipsMissingInstrumentWithoutAborting(t *testing.T) {
	alice := enabledUser(1, "alice")

	svc := NewCalendarService(testLogger(t),
		&fakeCadenceRepo{rules: []model.CadenceRule{
			testRule(1, 1, 99, "daily", 0, alice), // unknown instrument
			testRule(2, 1, 1, "daily", 0, alice),
		}},
		&fakeInstrumentRepo{byID: testInstruments()},
	)

	due, err := svc.ResolveDue(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Len(t, due[0].Rules, 1)
	assert.Equal(t, "SPY", due[0].Rules[0].Instrument.Symbol)
}

func TestCalendar_RepositoryFailurePropagates(t *testing.T) {
	svc := NewCalendarService(testLogger(t),
		&fakeCadenceRepo{err: errors.New("db down")},
		&fakeInstrumentRepo{byID: testInstruments()},
	)

	_, err := svc.ResolveDue(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestMondayBasedWeekday(t *testing.T) {
	// Go's Sunday-based weekday converts to the Monday=0..Sunday=6 numbering
	// the rules are stored with.
	assert.Equal(t, 0, mondayBasedWeekday(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))  // Monday
	assert.Equal(t, 5, mondayBasedWeekday(time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)))  // Saturday
	assert.Equal(t, 6, mondayBasedWeekday(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)))  // Sunday
}
