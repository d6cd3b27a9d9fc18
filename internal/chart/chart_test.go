package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"poolratio/internal/calculator"
	"poolratio/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

var (
	t1 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	t2 = t1.AddDate(0, 0, 1)
	t3 = t1.AddDate(0, 0, 2)
)

// snapshot builds a pair whose series are returned newest first, as the API does.
func snapshot(t *testing.T) *model.PairSnapshot {
	t.Helper()
	a := model.CandleSeries{Label: "HIGHER", Candles: []model.OHLCV{
		{Time: t3, Close: 14},
		{Time: t2, Close: 12},
		{Time: t1, Close: 10},
	}}
	b := model.CandleSeries{Label: "DEGEN", Candles: []model.OHLCV{
		{Time: t2, Close: 3},
		{Time: t1, Close: 2},
	}}
	rows, err := calculator.Align(a.Candles, b.Candles)
	require.NoError(t, err)
	require.NoError(t, calculator.ApplyRatios(rows))
	return &model.PairSnapshot{A: a, B: b, Rows: rows}
}

func TestBuildFigure(t *testing.T) {
	fig, err := BuildFigure(snapshot(t), Options{AnnotatePriceAt: "latest"})
	require.NoError(t, err)

	want := &Figure{Panels: []Panel{
		{
			Title:  "Historical Relative Price: HIGHER vs DEGEN",
			XLabel: "Date",
			YLabel: "Relative Price",
			Series: []Series{
				{Label: "HIGHER/DEGEN", Color: ratioColor, Points: []Point{{t1, 5}, {t2, 4}}},
				{Label: "DEGEN/HIGHER", Color: greyColor, Points: []Point{{t1, 0.2}, {t2, 0.25}}},
			},
			Annotations: []Annotation{
				{Time: t2, Value: 4, Text: "Current Relative Price: 4.00", HAlign: AlignRight, VAlign: AlignBottom, Color: textColor},
				{Time: t2, Value: 0.25, Text: "Current Relative Price: 0.25", HAlign: AlignRight, VAlign: AlignTop, Color: greyColor},
			},
		},
		{
			Title:  "Historical Closing Prices: HIGHER vs DEGEN",
			XLabel: "Date",
			YLabel: "Closing Price",
			Series: []Series{
				{Label: "HIGHER", Color: greenColor, Points: []Point{{t3, 14}, {t2, 12}, {t1, 10}}},
				{Label: "DEGEN", Color: purple, Points: []Point{{t2, 3}, {t1, 2}}},
			},
			Annotations: []Annotation{
				{Time: t3, Value: 14, Text: "Current Price HIGHER: 14.0000", HAlign: AlignRight, VAlign: AlignBottom, Color: textColor},
				{Time: t2, Value: 3, Text: "Current Price DEGEN: 3.0000", HAlign: AlignRight, VAlign: AlignBottom, Color: textColor},
			},
		},
	}}
	if diff := cmp.Diff(want, fig); diff != "" {
		t.Errorf("figure mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFigure_FirstRowAnnotation(t *testing.T) {
	snap := snapshot(t)
	// Reverse A so its first row is the oldest candle.
	snap.A.Candles = []model.OHLCV{{Time: t1, Close: 10}, {Time: t2, Close: 12}, {Time: t3, Close: 14}}

	fig, err := BuildFigure(snap, Options{AnnotatePriceAt: "first"})
	require.NoError(t, err)

	notes := fig.Panels[1].Annotations
	require.Len(t, notes, 2)
	assert.Equal(t, "Current Price HIGHER: 10.0000", notes[0].Text)
	assert.True(t, notes[0].Time.Equal(t1))
	assert.Equal(t, "Current Price DEGEN: 3.0000", notes[1].Text)
}

func TestBuildFigure_RatioSMA(t *testing.T) {
	fig, err := BuildFigure(snapshot(t), Options{RatioSMAPeriod: 2})
	require.NoError(t, err)

	series := fig.Panels[0].Series
	require.Len(t, series, 3)
	assert.Equal(t, "HIGHER/DEGEN SMA(2)", series[2].Label)
	assert.Equal(t, []Point{{t2, 4.5}}, series[2].Points)
}

func TestBuildFigure_NoOverlap(t *testing.T) {
	snap := &model.PairSnapshot{
		A: model.CandleSeries{Label: "A", Candles: []model.OHLCV{{Time: t1, Close: 1}}},
		B: model.CandleSeries{Label: "B", Candles: []model.OHLCV{{Time: t2, Close: 1}}},
	}
	rows, err := calculator.Align(snap.A.Candles, snap.B.Candles)
	require.NoError(t, err)
	snap.Rows = rows

	_, err = BuildFigure(snap, Options{})
	assert.ErrorIs(t, err, ErrNoRatio)
}

func TestRender_Formats(t *testing.T) {
	fig, err := BuildFigure(snapshot(t), Options{})
	require.NoError(t, err)

	var png bytes.Buffer
	require.NoError(t, Render(fig, &png, "png", 4*vg.Inch, 4*vg.Inch))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	var svg bytes.Buffer
	require.NoError(t, Render(fig, &svg, "svg", 4*vg.Inch, 4*vg.Inch))
	assert.Contains(t, svg.String(), "<svg")
	assert.Contains(t, svg.String(), "Current Relative Price: 4.00")
}

func TestRender_UnknownFormat(t *testing.T) {
	fig, err := BuildFigure(snapshot(t), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, Render(fig, &buf, "bmp", vg.Inch, vg.Inch))
}

func TestWriteFile(t *testing.T) {
	fig, err := BuildFigure(snapshot(t), Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "chart.png")
	require.NoError(t, WriteFile(fig, path, 8, 8))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	bad := filepath.Join(dir, "chart.gif")
	require.Error(t, WriteFile(fig, bad, 8, 8))
	_, err = os.Stat(bad)
	assert.True(t, os.IsNotExist(err))
}
