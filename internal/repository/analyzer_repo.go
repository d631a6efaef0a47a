package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"etf-advisor/config"
	"etf-advisor/internal/dto"
	"etf-advisor/pkg/httpclient"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/ratelimit"

	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned when the analyzer breaker is open and the call
// fails fast without touching the backend.
var ErrCircuitOpen = errors.New("analyzer circuit breaker is open")

type AnalyzerRepository interface {
	// Analyze performs one interactive analysis request with retries.
	Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
	// AnalyzeBatch submits a whole cohort in a single attempt, no retries.
	AnalyzeBatch(ctx context.Context, req dto.BatchAnalyzeRequest) (*dto.BatchAnalyzeResponse, error)
	BreakerState() string
}

type analyzerRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	client         httpclient.HTTPClient
	batchClient    httpclient.HTTPClient
	requestLimiter *rate.Limiter
	tokenLimiter   *ratelimit.TokenLimiter
	breaker        *circuitBreaker

	maxRetries int
	baseDelay  time.Duration
}

func NewAnalyzerRepository(cfg *config.Config, log *logger.Logger) AnalyzerRepository {
	timeout := cfg.Analyzer.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	batchTimeout := cfg.Analyzer.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 120 * time.Second
	}
	maxRetries := cfg.Analyzer.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := cfg.Analyzer.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 5 * time.Second
	}
	maxRequestPerMin := cfg.Analyzer.MaxRequestPerMin
	if maxRequestPerMin <= 0 {
		maxRequestPerMin = 60
	}
	threshold := cfg.Analyzer.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}
	cooldown := cfg.Analyzer.BreakerCooldown
	if cooldown <= 0 {
		cooldown = time.Minute
	}

	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMin)

	return &analyzerRepository{
		cfg:            cfg,
		log:            log,
		client:         httpclient.New(cfg.Analyzer.BaseURL, timeout, ""),
		batchClient:    httpclient.New(cfg.Analyzer.BaseURL, batchTimeout, ""),
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(maxRequestPerMin),
		breaker:        newCircuitBreaker(threshold, cooldown),
		maxRetries:     maxRetries,
		baseDelay:      baseDelay,
	}
}

func (r *analyzerRepository) Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	if !r.breaker.Allow() {
		r.log.WarnContext(ctx, "Analyzer call rejected, breaker open")
		return nil, ErrCircuitOpen
	}

	if err := r.tokenLimiter.Wait(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to wait for analyzer request budget: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for analyzer request limit: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.backoffDelay(attempt)
			r.log.WarnContext(ctx, "Retrying analyzer request",
				logger.IntField("attempt", attempt),
				logger.Field("delay", delay),
				logger.ErrorField(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result := dto.AnalyzeResponse{}
		resp, err := r.client.Post(ctx, "/analyze", req, nil, &result)
		if err != nil {
			lastErr = fmt.Errorf("failed to reach analyzer: %w", err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("analyzer returned status %d: %s", resp.StatusCode, string(resp.Body))
			continue
		}

		r.breaker.RecordSuccess()
		return &result, nil
	}

	r.breaker.RecordFailure()
	return nil, lastErr
}

func (r *analyzerRepository) AnalyzeBatch(ctx context.Context, req dto.BatchAnalyzeRequest) (*dto.BatchAnalyzeResponse, error) {
	if len(req.Requests) == 0 {
		return &dto.BatchAnalyzeResponse{Success: true}, nil
	}

	if err := r.tokenLimiter.Wait(ctx, len(req.Requests)); err != nil {
		return nil, fmt.Errorf("failed to wait for analyzer request budget: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for analyzer request limit: %w", err)
	}

	result := dto.BatchAnalyzeResponse{}
	resp, err := r.batchClient.Post(ctx, "/analyze/batch", req, nil, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to reach analyzer batch endpoint: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer batch returned status %d: %s", resp.StatusCode, string(resp.Body))
	}

	return &result, nil
}

func (r *analyzerRepository) BreakerState() string {
	return r.breaker.State()
}

// backoffDelay doubles the base delay per attempt with ±50% jitter.
func (r *analyzerRepository) backoffDelay(attempt int) time.Duration {
	delay := r.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	jittered := float64(delay)/2 + rand.Float64()*float64(delay)
	return time.Duration(jittered)
}

type circuitBreaker struct {
	mu                  sync.Mutex
	failureThreshold    int
	cooldown            time.Duration
	consecutiveFailures int
	openUntil           time.Time
}

func newCircuitBreaker(failureThreshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
	}
}

func (b *circuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Now().After(b.openUntil)
}

func (b *circuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
}

// RecordFailure opens the breaker once the consecutive failure count reaches
// the threshold. The count is kept while open so the first probe failure
// after the cooldown re-opens it immediately.
func (b *circuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures++
	if b.consecutiveFailures >= b.failureThreshold {
		b.openUntil = time.Now().Add(b.cooldown)
	}
}

func (b *circuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if time.Now().After(b.openUntil) {
		return "closed"
	}
	return "open"
}
