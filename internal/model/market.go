package model

import (
	"fmt"
	"time"
)

// Resolution is the candle interval granularity.
type Resolution string

const (
	ResolutionHour Resolution = "hour"
	ResolutionDay  Resolution = "day"
)

// ParseResolution validates a textual resolution.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case ResolutionHour, ResolutionDay:
		return Resolution(s), nil
	default:
		return "", fmt.Errorf("unknown resolution %q (use hour or day)", s)
	}
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// CandleSeries holds the candles fetched for one pool, in the order the API returned them.
type CandleSeries struct {
	Label       string
	Network     string
	PoolAddress string
	Resolution  Resolution
	Candles     []OHLCV
}

// First returns the candle at index 0.
func (s *CandleSeries) First() (OHLCV, bool) {
	if len(s.Candles) == 0 {
		return OHLCV{}, false
	}
	return s.Candles[0], true
}

// Latest returns the candle with the greatest timestamp.
func (s *CandleSeries) Latest() (OHLCV, bool) {
	if len(s.Candles) == 0 {
		return OHLCV{}, false
	}
	latest := s.Candles[0]
	for _, c := range s.Candles[1:] {
		if c.Time.After(latest.Time) {
			latest = c
		}
	}
	return latest, true
}
