package calculator

import (
	"errors"

	"poolratio/internal/model"
)

// CalculateSMA computes the simple moving average of the given values over the trailing period.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// RatioSMA is one point of the moving average of the relative price.
type RatioSMA struct {
	Row   model.AlignedRow
	Value float64
}

// RollingRatioSMA computes the SMA of the relative price at every row with a defined
// ratio once period ratios are available. Rows without a ratio are skipped.
func RollingRatioSMA(rows []model.AlignedRow, period int) ([]RatioSMA, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	var (
		window []float64
		out    []RatioSMA
	)
	for _, r := range rows {
		if r.RelativePrice == nil {
			continue
		}
		window = append(window, *r.RelativePrice)
		if len(window) > period {
			window = window[1:]
		}
		if len(window) < period {
			continue
		}
		v, err := CalculateSMA(window, period)
		if err != nil {
			return nil, err
		}
		out = append(out, RatioSMA{Row: r, Value: v})
	}
	return out, nil
}
