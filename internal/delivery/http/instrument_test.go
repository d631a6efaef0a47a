package http

import (
	"context"
	"net/http"
	"testing"

	"etf-advisor/internal/model"
	"etf-advisor/internal/service"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstrumentService struct {
	catalog []model.Instrument

	lastSymbol string
}

func (f *fakeInstrumentService) List(ctx context.Context) ([]model.Instrument, error) {
	return f.catalog, nil
}

func (f *fakeInstrumentService) GetBySymbol(ctx context.Context, symbol string) (*model.Instrument, error) {
	f.lastSymbol = symbol
	for i := range f.catalog {
		if f.catalog[i].Symbol == symbol {
			return &f.catalog[i], nil
		}
	}
	return nil, service.ErrNotFound
}

func instrumentHandlerFixture(fake *fakeInstrumentService) *HttpAPIHandler {
	svc := &service.Service{InstrumentService: fake}
	return NewHttpAPIHandler(context.Background(), echo.New(), goValidator.New(), svc)
}

func TestListInstruments(t *testing.T) {
	h := instrumentHandlerFixture(&fakeInstrumentService{catalog: []model.Instrument{
		{ID: 1, Symbol: "QQQ", Name: "Invesco QQQ Trust"},
		{ID: 2, Symbol: "VOO", Name: "Vanguard S&P 500 ETF"},
	}})

	c, rec := testContext(http.MethodGet, "/api/v1/instruments", "")
	require.NoError(t, h.ListInstruments(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbol":"QQQ"`)
	assert.Contains(t, rec.Body.String(), `"symbol":"VOO"`)
}

func TestGetInstrument_NormalizesSymbol(t *testing.T) {
	fake := &fakeInstrumentService{catalog: []model.Instrument{
		{ID: 1, Symbol: "VOO", Name: "Vanguard S&P 500 ETF"},
	}}
	h := instrumentHandlerFixture(fake)

	c, rec := testContext(http.MethodGet, "/api/v1/instruments/voo", "")
	c.SetParamNames("symbol")
	c.SetParamValues("voo")
	require.NoError(t, h.GetInstrument(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "VOO", fake.lastSymbol)
	assert.Contains(t, rec.Body.String(), "Vanguard")
}

func TestGetInstrument_UnknownSymbolIsNotFound(t *testing.T) {
	h := instrumentHandlerFixture(&fakeInstrumentService{})

	c, rec := testContext(http.MethodGet, "/api/v1/instruments/ARKK", "")
	c.SetParamNames("symbol")
	c.SetParamValues("ARKK")
	require.NoError(t, h.GetInstrument(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
