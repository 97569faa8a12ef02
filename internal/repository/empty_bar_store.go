package repository

import (
	"context"
	"time"

	"RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
)

// EmptyBarStore returns no candles. It lets synthetic-only runs execute
// the pipeline without a ClickHouse connection.
type EmptyBarStore struct{}

func NewEmptyBarStore() *EmptyBarStore { return &EmptyBarStore{} }

func (EmptyBarStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (EmptyBarStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (EmptyBarStore) StoreBatch(ctx context.Context, candles []models.Candle) error {
	return nil
}

func (EmptyBarStore) Health(ctx context.Context) error { return nil }

var _ domrepo.BarStore = (*EmptyBarStore)(nil)
