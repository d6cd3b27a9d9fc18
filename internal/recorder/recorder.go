package recorder

import (
	"time"

	"poolratio/internal/model"
)

// RunSummary is one recorded pipeline run.
type RunSummary struct {
	RunID       string
	RecordedAt  time.Time
	Network     string
	LabelA      string
	LabelB      string
	Resolution  string
	WindowStart int64
	WindowEnd   int64
	Rows        int
	LatestRatio float64
	ChartPath   string
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(snap *model.PairSnapshot, stats *model.RatioStats, chartPath string) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
