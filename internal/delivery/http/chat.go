package http

import (
	"errors"
	"fmt"
	"net/http"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/service"
	"etf-advisor/pkg/ratelimit"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// chatLimiters throttles the interactive analyzer path per user. The batch
// pipeline has its own pacing; this only guards the REST surface.
var chatLimiters = ratelimit.NewLimiterStore(rate.Limit(0.5), 3)

func (h *HttpAPIHandler) SetupChat(base *echo.Group) {
	v1 := base.Group("/v1/chat")
	{
		v1.POST("", h.Chat)
	}
}

func (h *HttpAPIHandler) Chat(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	limiter := chatLimiters.GetLimiter(fmt.Sprintf("user:%d", req.UserID))
	if !limiter.Allow() {
		return c.JSON(http.StatusTooManyRequests,
			dto.NewBaseResponse(http.StatusTooManyRequests, "Too many chat requests, slow down", nil))
	}

	resp, err := h.service.ChatService.Chat(c.Request().Context(), req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("User not found"))
		}
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Analysis", resp))
}
