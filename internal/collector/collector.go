package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"poolratio/internal/calculator"
	"poolratio/internal/model"

	"github.com/rs/zerolog"
)

// Collector runs the fetch → align → ratio pipeline for one pool pair.
type Collector struct {
	Fetcher Fetcher
	Pair    model.PairConfig
	// Parallel fetches both pools concurrently; alignment still waits for both.
	Parallel bool
	// Now is the clock used for the lookback window.
	Now    func() time.Time
	NewID  func() string
	Logger zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, pair model.PairConfig, logger zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Pair:    pair,
		Now:     time.Now,
		NewID:   NewRunID,
		Logger:  logger,
	}
}

// Collect fetches both series, aligns them and computes the relative price.
func (c *Collector) Collect(ctx context.Context) (*model.PairSnapshot, error) {
	now := c.Now()
	window, err := calculator.TimeWindow(c.Pair.DaysBack, now)
	if err != nil {
		return nil, fmt.Errorf("time window: %w", err)
	}
	c.Logger.Debug().
		Int64("from", window.Start).
		Int64("to", window.End).
		Str("resolution", string(c.Pair.Resolution)).
		Msg("fetching candles")

	var seriesA, seriesB *model.CandleSeries
	if c.Parallel {
		seriesA, seriesB, err = c.fetchBoth(ctx, window)
	} else {
		seriesA, err = c.fetch(ctx, "A", c.Pair.A, window)
		if err == nil {
			seriesB, err = c.fetch(ctx, "B", c.Pair.B, window)
		}
	}
	if err != nil {
		return nil, err
	}

	rows, err := calculator.Align(seriesA.Candles, seriesB.Candles)
	if err != nil {
		return nil, fmt.Errorf("align %s/%s: %w", c.Pair.A.Label, c.Pair.B.Label, err)
	}
	if err := calculator.ApplyRatios(rows); err != nil {
		return nil, fmt.Errorf("relative price %s/%s: %w", c.Pair.A.Label, c.Pair.B.Label, err)
	}

	snap := &model.PairSnapshot{
		RunID:     c.NewID(),
		Pair:      c.Pair,
		Window:    window,
		A:         *seriesA,
		B:         *seriesB,
		Rows:      rows,
		FetchedAt: now,
	}
	c.Logger.Info().
		Str("run_id", snap.RunID).
		Int("candles_a", len(seriesA.Candles)).
		Int("candles_b", len(seriesB.Candles)).
		Int("rows", len(rows)).
		Int("ratios", len(snap.Ratios())).
		Msg("pair collected")
	return snap, nil
}

func (c *Collector) fetch(ctx context.Context, side string, pool model.Pool, w model.Window) (*model.CandleSeries, error) {
	bars, err := c.Fetcher.FetchCandles(ctx, c.Pair.Network, pool.Address, c.Pair.Resolution, w)
	if err != nil {
		return nil, fmt.Errorf("fetch token %s (%s): %w", side, pool.Label, err)
	}
	c.Logger.Debug().Str("token", pool.Label).Str("pool", pool.Address).Int("candles", len(bars)).Msg("candles fetched")
	return &model.CandleSeries{
		Label:       pool.Label,
		Network:     c.Pair.Network,
		PoolAddress: pool.Address,
		Resolution:  c.Pair.Resolution,
		Candles:     bars,
	}, nil
}

func (c *Collector) fetchBoth(ctx context.Context, w model.Window) (*model.CandleSeries, *model.CandleSeries, error) {
	var (
		wg         sync.WaitGroup
		a, b       *model.CandleSeries
		errA, errB error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		a, errA = c.fetch(ctx, "A", c.Pair.A, w)
	}()
	go func() {
		defer wg.Done()
		b, errB = c.fetch(ctx, "B", c.Pair.B, w)
	}()
	wg.Wait()

	if errA != nil {
		return nil, nil, errA
	}
	if errB != nil {
		return nil, nil, errB
	}
	return a, b, nil
}
