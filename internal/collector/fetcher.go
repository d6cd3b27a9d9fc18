package collector

import (
	"context"

	"poolratio/internal/model"
)

// Fetcher defines the interface for fetching pool candles.
type Fetcher interface {
	FetchCandles(ctx context.Context, network, pool string, res model.Resolution, w model.Window) ([]model.OHLCV, error)
	Name() string
}
