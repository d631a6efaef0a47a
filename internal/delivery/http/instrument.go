package http

import (
	"errors"
	"net/http"
	"strings"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupInstruments(base *echo.Group) {
	v1 := base.Group("/v1/instruments")
	{
		v1.GET("", h.ListInstruments)
		v1.GET("/:symbol", h.GetInstrument)
	}
}

func (h *HttpAPIHandler) ListInstruments(c echo.Context) error {
	instruments, err := h.service.InstrumentService.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Instruments", instruments))
}

func (h *HttpAPIHandler) GetInstrument(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("symbol is required"))
	}

	instrument, err := h.service.InstrumentService.GetBySymbol(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("Instrument not found"))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Instrument", instrument))
}
