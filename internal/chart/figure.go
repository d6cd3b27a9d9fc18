package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"poolratio/internal/calculator"
	"poolratio/internal/model"
)

// ErrNoRatio is returned when the two series share no timestamp.
var ErrNoRatio = errors.New("no timestamp has a close for both tokens")

var (
	ratioColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	greyColor  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	smaColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	greenColor = color.RGBA{G: 128, A: 255}
	purple     = color.RGBA{R: 128, B: 128, A: 255}
	textColor  = color.RGBA{A: 255}
)

// Point is one sample of a plotted series.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is a labeled line.
type Series struct {
	Label  string
	Color  color.RGBA
	Points []Point
}

// HAlign positions annotation text horizontally relative to its anchor.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign positions annotation text vertically relative to its anchor.
type VAlign int

const (
	AlignBottom VAlign = iota
	AlignMiddle
	AlignTop
)

// Annotation is text anchored at a data coordinate.
type Annotation struct {
	Time   time.Time
	Value  float64
	Text   string
	HAlign HAlign
	VAlign VAlign
	Color  color.RGBA
}

// Panel is one subplot.
type Panel struct {
	Title       string
	XLabel      string
	YLabel      string
	Series      []Series
	Annotations []Annotation
}

// Figure is the full chart description, built from a snapshot and consumed by Render.
type Figure struct {
	Panels []Panel
}

// Options tune figure construction.
type Options struct {
	// AnnotatePriceAt selects the candle used for the closing-price annotations:
	// "latest" (greatest timestamp, default) or "first" (first candle as returned by the API).
	AnnotatePriceAt string
	// RatioSMAPeriod adds a moving average of the ratio when > 0.
	RatioSMAPeriod int
}

// BuildFigure derives the relative-price and closing-price panels from a snapshot.
func BuildFigure(snap *model.PairSnapshot, opts Options) (*Figure, error) {
	ratioPanel, err := buildRatioPanel(snap, opts)
	if err != nil {
		return nil, err
	}
	pricePanel, err := buildPricePanel(snap, opts)
	if err != nil {
		return nil, err
	}
	return &Figure{Panels: []Panel{ratioPanel, pricePanel}}, nil
}

func buildRatioPanel(snap *model.PairSnapshot, opts Options) (Panel, error) {
	a, b := snap.A.Label, snap.B.Label

	latest, ok := snap.LatestRatio()
	if !ok {
		return Panel{}, ErrNoRatio
	}

	ratio := Series{Label: a + "/" + b, Color: ratioColor}
	inverse := Series{Label: b + "/" + a, Color: greyColor}
	for _, r := range snap.Rows {
		if r.RelativePrice == nil {
			continue
		}
		ratio.Points = append(ratio.Points, Point{Time: r.Time, Value: *r.RelativePrice})
		inverse.Points = append(inverse.Points, Point{Time: r.Time, Value: 1 / *r.RelativePrice})
	}

	panel := Panel{
		Title:  fmt.Sprintf("Historical Relative Price: %s vs %s", a, b),
		XLabel: "Date",
		YLabel: "Relative Price",
		Series: []Series{ratio, inverse},
	}

	if opts.RatioSMAPeriod > 0 {
		sma, err := calculator.RollingRatioSMA(snap.Rows, opts.RatioSMAPeriod)
		if err != nil {
			return Panel{}, fmt.Errorf("ratio sma: %w", err)
		}
		if len(sma) > 0 {
			s := Series{Label: fmt.Sprintf("%s/%s SMA(%d)", a, b, opts.RatioSMAPeriod), Color: smaColor}
			for _, p := range sma {
				s.Points = append(s.Points, Point{Time: p.Row.Time, Value: p.Value})
			}
			panel.Series = append(panel.Series, s)
		}
	}

	current := round2(*latest.RelativePrice)
	currentInverse := round2(1 / *latest.RelativePrice)
	panel.Annotations = []Annotation{
		{
			Time:   latest.Time,
			Value:  current,
			Text:   fmt.Sprintf("Current Relative Price: %.2f", current),
			HAlign: AlignRight,
			VAlign: AlignBottom,
			Color:  textColor,
		},
		{
			Time:   latest.Time,
			Value:  currentInverse,
			Text:   fmt.Sprintf("Current Relative Price: %.2f", currentInverse),
			HAlign: AlignRight,
			VAlign: AlignTop,
			Color:  greyColor,
		},
	}
	return panel, nil
}

func buildPricePanel(snap *model.PairSnapshot, opts Options) (Panel, error) {
	panel := Panel{
		Title:  fmt.Sprintf("Historical Closing Prices: %s vs %s", snap.A.Label, snap.B.Label),
		XLabel: "Date",
		YLabel: "Closing Price",
	}
	for _, s := range []struct {
		series *model.CandleSeries
		color  color.RGBA
	}{
		{&snap.A, greenColor},
		{&snap.B, purple},
	} {
		line := Series{Label: s.series.Label, Color: s.color}
		for _, c := range s.series.Candles {
			line.Points = append(line.Points, Point{Time: c.Time, Value: c.Close})
		}
		panel.Series = append(panel.Series, line)

		var (
			anchor model.OHLCV
			ok     bool
		)
		if opts.AnnotatePriceAt == "first" {
			anchor, ok = s.series.First()
		} else {
			anchor, ok = s.series.Latest()
		}
		if !ok {
			return Panel{}, fmt.Errorf("series %s has no candles", s.series.Label)
		}
		panel.Annotations = append(panel.Annotations, Annotation{
			Time:   anchor.Time,
			Value:  anchor.Close,
			Text:   fmt.Sprintf("Current Price %s: %.4f", s.series.Label, anchor.Close),
			HAlign: AlignRight,
			VAlign: AlignBottom,
			Color:  textColor,
		})
	}
	return panel, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
