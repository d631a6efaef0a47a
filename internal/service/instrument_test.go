package service

import (
	"context"
	"testing"

	"etf-advisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentList_ReturnsCatalog(t *testing.T) {
	svc := NewInstrumentService(testLogger(t), &fakeInstrumentRepo{byID: map[uint]*model.Instrument{
		1: {ID: 1, Symbol: "VOO", Name: "Vanguard S&P 500 ETF"},
		2: {ID: 2, Symbol: "QQQ", Name: "Invesco QQQ Trust"},
	}})

	instruments, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, instruments, 2)
}

func TestInstrumentGetBySymbol(t *testing.T) {
	svc := NewInstrumentService(testLogger(t), &fakeInstrumentRepo{byID: map[uint]*model.Instrument{
		1: {ID: 1, Symbol: "VOO", Name: "Vanguard S&P 500 ETF"},
	}})

	instrument, err := svc.GetBySymbol(context.Background(), "VOO")
	require.NoError(t, err)
	assert.Equal(t, "Vanguard S&P 500 ETF", instrument.Name)

	_, err = svc.GetBySymbol(context.Background(), "ARKK")
	require.ErrorIs(t, err, ErrNotFound)
}
