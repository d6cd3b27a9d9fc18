package calculator

import (
	"errors"
	"math"

	"poolratio/internal/model"
)

// RatioRange returns the high and low of the defined relative prices.
func RatioRange(rows []model.AlignedRow) (high, low float64, err error) {
	high = math.Inf(-1)
	low = math.Inf(1)
	n := 0
	for _, r := range rows {
		if r.RelativePrice == nil {
			continue
		}
		n++
		if *r.RelativePrice > high {
			high = *r.RelativePrice
		}
		if *r.RelativePrice < low {
			low = *r.RelativePrice
		}
	}
	if n == 0 {
		return 0, 0, errors.New("no relative prices in window")
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// SummarizeRatios computes the window statistics of a snapshot's relative price.
func SummarizeRatios(snap *model.PairSnapshot) (*model.RatioStats, error) {
	latest, ok := snap.LatestRatio()
	if !ok {
		return nil, errors.New("no relative prices in window")
	}
	high, low, err := RatioRange(snap.Rows)
	if err != nil {
		return nil, err
	}
	pos, err := RangePosition(*latest.RelativePrice, high, low)
	if err != nil {
		return nil, err
	}
	return &model.RatioStats{
		Current:  *latest.RelativePrice,
		High:     high,
		Low:      low,
		Position: pos,
		Samples:  len(snap.Ratios()),
	}, nil
}
