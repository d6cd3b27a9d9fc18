package calculator

import (
	"fmt"
	"time"

	"poolratio/internal/model"
)

const secondsPerDay = 86400

// TimeWindow returns the range ending at now and spanning daysBack whole days.
func TimeWindow(daysBack int, now time.Time) (model.Window, error) {
	if daysBack <= 0 {
		return model.Window{}, fmt.Errorf("days back must be positive, got %d", daysBack)
	}
	end := now.Unix()
	return model.Window{
		Start: end - int64(daysBack)*secondsPerDay,
		End:   end,
	}, nil
}
