package http

import (
	"errors"
	"net/http"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPipeline(base *echo.Group) {
	v1 := base.Group("/v1/pipeline")
	{
		v1.POST("/run", h.RunPipeline)
		v1.GET("/ticks/latest", h.LatestTick)
	}
}

// RunPipeline triggers one tick synchronously. An overlapping trigger is
// rejected with 409 instead of queueing a second tick.
func (h *HttpAPIHandler) RunPipeline(c echo.Context) error {
	tick, err := h.service.SchedulerService.RunTick(c.Request().Context())
	if err != nil {
		if errors.Is(err, service.ErrTickInProgress) {
			return c.JSON(http.StatusConflict, dto.NewBaseResponse(http.StatusConflict, err.Error(), nil))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), tick))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Tick completed", tick))
}

func (h *HttpAPIHandler) LatestTick(c echo.Context) error {
	tick, err := h.service.SchedulerService.LatestTick(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	if tick == nil {
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("No tick has run yet"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Latest tick", tick))
}
