package cmd

import (
	"context"
	"testing"
	"time"

	"etf-advisor/config"
	httpDelivery "etf-advisor/internal/delivery/http"
	"etf-advisor/internal/service"
	"etf-advisor/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shutdown happens after the root context is cancelled; Stop must still get
// its full grace period instead of inheriting the dead context.
func TestHTTPServerStop_GracefulAfterRootCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	appDep := &AppDependency{
		cfg:  &config.Config{API: config.API{Port: 0}},
		log:  log,
		echo: echo.New(),
	}
	appDep.echo.HideBanner = true

	handler := httpDelivery.NewHttpAPIHandler(ctx, appDep.echo, goValidator.New(), &service.Service{})
	srv := NewHTTPServer(ctx, appDep, handler)

	go func() { _ = srv.Start() }()
	require.Eventually(t, func() bool {
		return appDep.echo.ListenerAddr() != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Stop() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not finish within the grace period")
	}
}
