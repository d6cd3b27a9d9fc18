package calculator

import (
	"sort"

	"poolratio/internal/model"
)

// Align outer-joins two candle series on timestamp. Every timestamp present in
// either input appears exactly once, in ascending order.
func Align(a, b []model.OHLCV) ([]model.AlignedRow, error) {
	rows := make(map[int64]*model.AlignedRow, len(a)+len(b))

	closesA, err := indexCloses("A", a)
	if err != nil {
		return nil, err
	}
	closesB, err := indexCloses("B", b)
	if err != nil {
		return nil, err
	}

	for ts, c := range closesA {
		rows[ts] = &model.AlignedRow{Time: c.Time, CloseA: closePtr(c)}
	}
	for ts, c := range closesB {
		if r, ok := rows[ts]; ok {
			r.CloseB = closePtr(c)
			continue
		}
		rows[ts] = &model.AlignedRow{Time: c.Time, CloseB: closePtr(c)}
	}

	out := make([]model.AlignedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func indexCloses(name string, bars []model.OHLCV) (map[int64]model.OHLCV, error) {
	idx := make(map[int64]model.OHLCV, len(bars))
	for _, bar := range bars {
		key := bar.Time.UnixNano()
		if _, dup := idx[key]; dup {
			return nil, &AlignmentError{Series: name, Time: bar.Time.UTC()}
		}
		idx[key] = bar
	}
	return idx, nil
}

func closePtr(bar model.OHLCV) *float64 {
	v := bar.Close
	return &v
}
