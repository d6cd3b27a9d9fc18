package collector

import (
	"context"
	"math"
	"sync"
	"time"

	"poolratio/internal/model"
)

// StaticFetcher returns fixed data per pool address, for dry runs and tests.
type StaticFetcher struct {
	Bars map[string][]model.OHLCV
	Errs map[string]error
	// BasePrice seeds generated candles for pools without fixed bars.
	BasePrice map[string]float64

	mu    sync.Mutex
	Calls []string
}

func (m *StaticFetcher) Name() string { return "static" }

func (m *StaticFetcher) FetchCandles(_ context.Context, _, pool string, res model.Resolution, w model.Window) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, pool)
	m.mu.Unlock()
	if err, ok := m.Errs[pool]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[pool]; ok {
		return bars, nil
	}
	base := 1.0
	if p, ok := m.BasePrice[pool]; ok {
		base = p
	}
	return generateMockBars(base, res, w), nil
}

// generateMockBars produces one gently oscillating candle per interval inside w.
func generateMockBars(basePrice float64, res model.Resolution, w model.Window) []model.OHLCV {
	step := 24 * time.Hour
	if res == model.ResolutionHour {
		step = time.Hour
	}
	start := time.Unix(w.Start, 0).UTC().Truncate(step)
	end := time.Unix(w.End, 0).UTC()

	var bars []model.OHLCV
	for i, ts := 0, start; !ts.After(end); i, ts = i+1, ts.Add(step) {
		if ts.Unix() < w.Start {
			continue
		}
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/4))
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
	}
	return bars
}
