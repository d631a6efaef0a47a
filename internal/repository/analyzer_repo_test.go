package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"etf-advisor/config"
	"etf-advisor/internal/dto"
	"etf-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzerTestConfig(baseURL string) *config.Config {
	return &config.Config{
		Analyzer: config.Analyzer{
			BaseURL:          baseURL,
			Timeout:          2 * time.Second,
			BatchTimeout:     2 * time.Second,
			MaxRetries:       3,
			RetryBaseDelay:   time.Millisecond,
			MaxRequestPerMin: 60000,
			BreakerThreshold: 2,
			BreakerCooldown:  50 * time.Millisecond,
		},
	}
}

func analyzerTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func singleRequest() dto.AnalyzeRequest {
	return dto.AnalyzeRequest{
		Messages: []dto.AnalyzeMessage{
			{Role: dto.RoleUser, Content: "how is SPY doing"},
		},
	}
}

func TestAnalyzerRepo_SingleRequestRetriesThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"answer":"stay the course"}`))
	}))
	defer server.Close()

	repo := NewAnalyzerRepository(analyzerTestConfig(server.URL), analyzerTestLogger(t))

	resp, err := repo.Analyze(context.Background(), singleRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "stay the course", resp.Answer)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "two failed attempts then one success")
}

func TestAnalyzerRepo_SingleRequestGivesUpAfterMaxRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	repo := NewAnalyzerRepository(analyzerTestConfig(server.URL), analyzerTestLogger(t))

	_, err := repo.Analyze(context.Background(), singleRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestAnalyzerRepo_BatchMakesExactlyOneAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := NewAnalyzerRepository(analyzerTestConfig(server.URL), analyzerTestLogger(t))

	req := dto.BatchAnalyzeRequest{Requests: []dto.BatchAnalyzeItem{
		{RequestID: "r1", Messages: singleRequest().Messages},
	}}
	_, err := repo.AnalyzeBatch(context.Background(), req)
	require.Error(t, err, "batch failure surfaces to the caller instead of retrying")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "a whole-cohort call is never retried")
}

func TestAnalyzerRepo_BatchSuccessDecodesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze/batch", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"results": {
				"successful": [{"request_id": "r1", "answer": "hold"}],
				"failed": [{"request_id": "r2", "error": "model overloaded"}]
			},
			"summary": {"successful_count": 1, "failed_count": 1}
		}`))
	}))
	defer server.Close()

	repo := NewAnalyzerRepository(analyzerTestConfig(server.URL), analyzerTestLogger(t))

	req := dto.BatchAnalyzeRequest{Requests: []dto.BatchAnalyzeItem{
		{RequestID: "r1"},
		{RequestID: "r2"},
	}}
	resp, err := repo.AnalyzeBatch(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Results.Successful, 1)
	assert.Equal(t, "hold", resp.Results.Successful[0].Answer)
	require.Len(t, resp.Results.Failed, 1)
	assert.Equal(t, "model overloaded", resp.Results.Failed[0].Error)
}

func TestAnalyzerRepo_EmptyBatchSkipsBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for an empty batch")
	}))
	defer server.Close()

	repo := NewAnalyzerRepository(analyzerTestConfig(server.URL), analyzerTestLogger(t))

	resp, err := repo.AnalyzeBatch(context.Background(), dto.BatchAnalyzeRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestAnalyzerRepo_BreakerOpensAndFailsFast(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := analyzerTestConfig(server.URL)
	cfg.Analyzer.MaxRetries = 1
	cfg.Analyzer.BreakerCooldown = time.Minute
	repo := NewAnalyzerRepository(cfg, analyzerTestLogger(t))

	// Two consecutive failed calls reach the threshold.
	_, err := repo.Analyze(context.Background(), singleRequest())
	require.Error(t, err)
	_, err = repo.Analyze(context.Background(), singleRequest())
	require.Error(t, err)
	assert.Equal(t, "open", repo.BreakerState())

	before := atomic.LoadInt32(&attempts)
	_, err = repo.Analyze(context.Background(), singleRequest())
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, atomic.LoadInt32(&attempts), "open breaker never touches the backend")
}

func TestAnalyzerRepo_BreakerClosesAfterCooldown(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"answer":"ok"}`))
	}))
	defer server.Close()

	cfg := analyzerTestConfig(server.URL)
	cfg.Analyzer.MaxRetries = 1
	repo := NewAnalyzerRepository(cfg, analyzerTestLogger(t))

	_, _ = repo.Analyze(context.Background(), singleRequest())
	_, _ = repo.Analyze(context.Background(), singleRequest())
	require.Equal(t, "open", repo.BreakerState())

	fail.Store(false)
	time.Sleep(cfg.Analyzer.BreakerCooldown + 20*time.Millisecond)
	require.Equal(t, "closed", repo.BreakerState())

	resp, err := repo.Analyze(context.Background(), singleRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Answer)
}
