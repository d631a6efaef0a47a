package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"etf-advisor/config"
	"etf-advisor/internal/dto"
	"etf-advisor/internal/model"
	"etf-advisor/internal/repository"
	"etf-advisor/internal/scoring"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// ErrTickInProgress is returned when a tick trigger arrives while another
// tick is still running. The trigger is skipped, never queued.
var ErrTickInProgress = errors.New("a pipeline tick is already running")

type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	// RunTick executes one full pipeline tick. Manual triggers and the timer
	// share the same overlap guard.
	RunTick(ctx context.Context) (*model.TickExecution, error)
	LatestTick(ctx context.Context) (*model.TickExecution, error)
	// RunReminder dispatches the daily investment-reminder digests.
	RunReminder(ctx context.Context) error
}

type schedulerService struct {
	cfg        *config.Config
	log        *logger.Logger
	calendar   CalendarService
	batcher    BatcherService
	dispatcher DispatcherService
	scorer     *scoring.Scorer
	tickRepo   repository.TickExecutionRepository

	running       atomic.Bool
	currentTickID atomic.Value // string
	cron          *cron.Cron
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	calendar CalendarService,
	batcher BatcherService,
	dispatcher DispatcherService,
	scorer *scoring.Scorer,
	tickRepo repository.TickExecutionRepository,
) SchedulerService {
	s := &schedulerService{
		cfg:        cfg,
		log:        log,
		calendar:   calendar,
		batcher:    batcher,
		dispatcher: dispatcher,
		scorer:     scorer,
		tickRepo:   tickRepo,
		cron:       cron.New(),
	}
	s.currentTickID.Store("")
	return s
}

func (s *schedulerService) Start(ctx context.Context) error {
	if !s.cfg.Scheduler.Enabled {
		s.log.Info("Scheduler disabled, pipeline runs only on manual triggers")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	interval := s.cfg.Scheduler.TickInterval
	if interval <= 0 {
		interval = time.Hour
	}

	s.wg.Add(1)
	utils.GoSafe(func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.log.Info("Pipeline scheduler started", logger.Field("tick_interval", interval))
		for {
			select {
			case <-runCtx.Done():
				s.log.Info("Pipeline scheduler stopped")
				return
			case <-ticker.C:
				if _, err := s.RunTick(runCtx); err != nil && !errors.Is(err, ErrTickInProgress) {
					s.log.ErrorContextWithAlert(runCtx, "Pipeline tick failed", logger.ErrorField(err))
				}
			}
		}
	})

	reminderCron := s.cfg.Scheduler.ReminderCron
	if reminderCron == "" {
		reminderCron = "0 9 * * *"
	}
	if _, err := s.cron.AddFunc(reminderCron, func() {
		if err := s.RunReminder(runCtx); err != nil {
			s.log.ErrorContextWithAlert(runCtx, "Reminder job failed", logger.ErrorField(err))
		}
	}); err != nil {
		cancel()
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}
	s.cron.Start()

	return nil
}

func (s *schedulerService) Stop() {
	if s.cancel == nil {
		return
	}
	cronCtx := s.cron.Stop()
	s.cancel()
	s.wg.Wait()
	<-cronCtx.Done()
	s.log.Info("Scheduler shutdown completed")
}

func (s *schedulerService) RunTick(ctx context.Context) (*model.TickExecution, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.WarnContext(ctx, "Skipping overlapping tick trigger",
			logger.StringField("running_tick_id", s.currentTickID.Load().(string)),
		)
		return nil, ErrTickInProgress
	}
	defer func() {
		s.currentTickID.Store("")
		s.running.Store(false)
	}()

	timeout := s.cfg.Scheduler.TickTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	tickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := &model.TickExecution{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Status:    model.TickStatusRunning,
	}
	s.currentTickID.Store(tick.ID)

	if err := s.tickRepo.Create(tickCtx, tick); err != nil {
		return nil, fmt.Errorf("failed to record tick start: %w", err)
	}

	s.log.InfoContext(tickCtx, "Tick started", logger.StringField("tick_id", tick.ID))

	dueUsers, err := s.calendar.ResolveDue(tickCtx, utils.TruncateToDay(utils.TimeNowMarket()))
	if err != nil {
		// Calendar resolution is the one systemic precondition: its failure
		// aborts the whole tick.
		s.failTick(tickCtx, tick, err)
		return tick, fmt.Errorf("failed to resolve due users: %w", err)
	}
	tick.UsersTotal = len(dueUsers)

	results := s.batcher.AnalyzeCohort(tickCtx, dueUsers)

	stats := s.scoreAndDispatch(tickCtx, dueUsers, results)

	s.completeTick(tickCtx, tick, stats, len(results))
	return tick, nil
}

type tickStats struct {
	mu           sync.Mutex
	processed    int
	failed       int
	notified     int
	totalLatency time.Duration
}

func (st *tickStats) record(latency time.Duration, notified bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.processed++
	st.totalLatency += latency
	if notified {
		st.notified++
	}
}

func (st *tickStats) recordFailure(latency time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.failed++
	st.totalLatency += latency
}

// scoreAndDispatch runs the per-user half of the tick with bounded
// parallelism. A panic or error in one user's work never stops the rest of
// the cohort.
func (s *schedulerService) scoreAndDispatch(ctx context.Context, dueUsers []dto.DueUser, results map[uint]dto.AnalysisResult) *tickStats {
	stats := &tickStats{}
	evalTime := utils.TimeNowMarket()

	maxConcurrency := s.cfg.Scheduler.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i := range dueUsers {
		due := &dueUsers[i]
		g.Go(func() error {
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					s.log.ErrorContext(gctx, "Recovered panic while processing user",
						logger.IntField("user_id", int(due.User.ID)),
						logger.Field("panic", r),
					)
					stats.recordFailure(time.Since(start))
				}
			}()

			if !utils.ShouldContinue(gctx, s.log) {
				stats.recordFailure(time.Since(start))
				return nil
			}

			result, ok := results[due.User.ID]
			if !ok {
				// No answer for this user this tick, nothing to score.
				stats.record(time.Since(start), false)
				return nil
			}

			score := s.scorer.Evaluate(result.Answer, evalTime)
			s.log.DebugContext(gctx, "Analysis scored",
				logger.IntField("user_id", int(due.User.ID)),
				logger.Field("composite", score.Composite),
				logger.Field("threshold", score.Threshold),
				logger.Field("notify", score.Notify),
				logger.Field("failed_open", score.FailedOpen),
			)

			if !score.Notify {
				stats.record(time.Since(start), false)
				return nil
			}

			if _, err := s.dispatcher.SendAIAnalysis(gctx, due, result.Answer); err != nil {
				s.log.ErrorContext(gctx, "Failed to dispatch analysis notification",
					logger.IntField("user_id", int(due.User.ID)),
					logger.ErrorField(err),
				)
				stats.recordFailure(time.Since(start))
				return nil
			}

			stats.record(time.Since(start), true)
			return nil
		})
	}

	_ = g.Wait()
	return stats
}

// completeTick writes the tick metrics. Metrics are recorded even when part
// of the cohort failed.
func (s *schedulerService) completeTick(ctx context.Context, tick *model.TickExecution, stats *tickStats, analyzed int) {
	completedAt := time.Now()
	duration := completedAt.Sub(tick.StartedAt)

	summary := dto.TickSummary{
		StartedAt:      tick.StartedAt,
		CompletedAt:    completedAt,
		DurationMS:     duration.Milliseconds(),
		UsersTotal:     tick.UsersTotal,
		UsersProcessed: stats.processed,
		UsersFailed:    stats.failed,
		AnalyzedCount:  analyzed,
		NotifiedCount:  stats.notified,
	}
	if stats.processed+stats.failed > 0 {
		summary.AvgUserLatencyMS = float64(stats.totalLatency.Milliseconds()) / float64(stats.processed+stats.failed)
	}
	if duration > 0 {
		summary.ThroughputPerSec = float64(stats.processed) / duration.Seconds()
	}

	tick.Status = model.TickStatusCompleted
	tick.CompletedAt = sql.NullTime{Time: completedAt, Valid: true}
	tick.UsersProcessed = stats.processed
	tick.NotifiedCount = stats.notified

	if payload, err := json.Marshal(summary); err == nil {
		tick.Summary = payload
	} else {
		s.log.ErrorContext(ctx, "Failed to marshal tick summary", logger.ErrorField(err))
	}

	if err := s.tickRepo.Update(ctx, tick); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist tick metrics",
			logger.StringField("tick_id", tick.ID),
			logger.ErrorField(err),
		)
	}

	s.log.InfoContext(ctx, "Tick completed",
		logger.StringField("tick_id", tick.ID),
		logger.Field("duration", duration),
		logger.IntField("users_total", tick.UsersTotal),
		logger.IntField("users_processed", stats.processed),
		logger.IntField("users_failed", stats.failed),
		logger.IntField("notified", stats.notified),
		logger.Field("avg_user_latency_ms", summary.AvgUserLatencyMS),
		logger.Field("throughput_per_sec", summary.ThroughputPerSec),
	)
}

func (s *schedulerService) failTick(ctx context.Context, tick *model.TickExecution, cause error) {
	tick.Status = model.TickStatusFailed
	tick.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}
	tick.ErrorMessage = sql.NullString{String: cause.Error(), Valid: true}

	if err := s.tickRepo.Update(ctx, tick); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist failed tick",
			logger.StringField("tick_id", tick.ID),
			logger.ErrorField(err),
		)
	}
}

func (s *schedulerService) LatestTick(ctx context.Context) (*model.TickExecution, error) {
	return s.tickRepo.GetLatest(ctx)
}

func (s *schedulerService) RunReminder(ctx context.Context) error {
	dueUsers, err := s.calendar.ResolveDue(ctx, utils.TruncateToDay(utils.TimeNowMarket()))
	if err != nil {
		return fmt.Errorf("failed to resolve due users for reminders: %w", err)
	}

	s.log.InfoContext(ctx, "Sending investment reminders", logger.IntField("user_count", len(dueUsers)))

	for i := range dueUsers {
		due := &dueUsers[i]
		if !utils.ShouldContinue(ctx, s.log) {
			return ctx.Err()
		}
		if _, err := s.dispatcher.SendInvestmentReminder(ctx, due); err != nil {
			s.log.ErrorContext(ctx, "Failed to send investment reminder",
				logger.IntField("user_id", int(due.User.ID)),
				logger.ErrorField(err),
			)
		}
	}
	return nil
}
