package model

import "time"

// Pool identifies one liquidity pool used as a pricing source.
type Pool struct {
	Label   string `yaml:"label"`
	Address string `yaml:"pool"`
}

// PairConfig is the immutable input of one pipeline run.
type PairConfig struct {
	Network    string
	A          Pool
	B          Pool
	Resolution Resolution
	DaysBack   int
}

// Window is an inclusive Unix-epoch range in seconds.
type Window struct {
	Start int64
	End   int64
}

// AlignedRow is one timestamp of the outer join of two series.
// A nil field means the value is absent for that timestamp.
type AlignedRow struct {
	Time          time.Time
	CloseA        *float64
	CloseB        *float64
	RelativePrice *float64
}

// PairSnapshot is the output of one pipeline run.
type PairSnapshot struct {
	RunID     string
	Pair      PairConfig
	Window    Window
	A         CandleSeries
	B         CandleSeries
	Rows      []AlignedRow
	FetchedAt time.Time
}

// LatestRatio returns the most recent row with a defined relative price.
func (s *PairSnapshot) LatestRatio() (AlignedRow, bool) {
	for i := len(s.Rows) - 1; i >= 0; i-- {
		if s.Rows[i].RelativePrice != nil {
			return s.Rows[i], true
		}
	}
	return AlignedRow{}, false
}

// Ratios returns the defined relative prices in row order.
func (s *PairSnapshot) Ratios() []float64 {
	out := make([]float64, 0, len(s.Rows))
	for _, r := range s.Rows {
		if r.RelativePrice != nil {
			out = append(out, *r.RelativePrice)
		}
	}
	return out
}
