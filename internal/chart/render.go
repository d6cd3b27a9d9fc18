package chart

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"
)

const dateFormat = "2006-01-02"

// Render draws the figure's panels stacked vertically and writes them to w in
// the given format (png, svg or pdf).
func Render(fig *Figure, w io.Writer, format string, width, height vg.Length) error {
	if len(fig.Panels) == 0 {
		return fmt.Errorf("render: figure has no panels")
	}
	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	grid := make([][]*plot.Plot, len(fig.Panels))
	for i, p := range fig.Panels {
		pl, err := newPlot(p)
		if err != nil {
			return fmt.Errorf("render panel %q: %w", p.Title, err)
		}
		grid[i] = []*plot.Plot{pl}
	}

	tiles := draw.Tiles{
		Rows:      len(grid),
		Cols:      1,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
		PadY:      vg.Millimeter * 6,
	}
	canvases := plot.Align(grid, tiles, draw.New(c))
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("render: write %s: %w", format, err)
	}
	return nil
}

// WriteFile renders the figure to path, picking the format from its extension.
// Nothing is written when rendering fails.
func WriteFile(fig *Figure, path string, widthInches, heightInches float64) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	var buf bytes.Buffer
	if err := Render(fig, &buf, format, vg.Length(widthInches)*vg.Inch, vg.Length(heightInches)*vg.Inch); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func newPlot(p Panel) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = p.XLabel
	pl.Y.Label.Text = p.YLabel
	pl.X.Tick.Marker = plot.TimeTicks{Format: dateFormat}
	pl.Legend.Top = true
	pl.Add(plotter.NewGrid())

	for _, s := range p.Series {
		if len(s.Points) == 0 {
			continue
		}
		line, err := plotter.NewLine(toXYs(s.Points))
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Label, err)
		}
		line.Color = s.Color
		line.Width = vg.Points(1.5)
		pl.Add(line)
		pl.Legend.Add(s.Label, line)
	}

	if len(p.Annotations) == 0 {
		return pl, nil
	}
	xys := make(plotter.XYs, len(p.Annotations))
	texts := make([]string, len(p.Annotations))
	for i, a := range p.Annotations {
		xys[i] = plotter.XY{X: float64(a.Time.Unix()), Y: a.Value}
		texts[i] = a.Text
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("annotations: %w", err)
	}
	for i, a := range p.Annotations {
		labels.TextStyle[i].Color = a.Color
		labels.TextStyle[i].XAlign = xAlign(a.HAlign)
		labels.TextStyle[i].YAlign = yAlign(a.VAlign)
	}
	pl.Add(labels)
	return pl, nil
}

// toXYs converts points to plot coordinates in time order; the API may return
// candles newest first.
func toXYs(points []Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i] = plotter.XY{X: float64(p.Time.Unix()), Y: p.Value}
	}
	sort.SliceStable(xys, func(i, j int) bool { return xys[i].X < xys[j].X })
	return xys
}

func xAlign(h HAlign) text.XAlignment {
	switch h {
	case AlignLeft:
		return text.XLeft
	case AlignCenter:
		return text.XCenter
	default:
		return text.XRight
	}
}

func yAlign(v VAlign) text.YAlignment {
	switch v {
	case AlignTop:
		return text.YTop
	case AlignMiddle:
		return text.YCenter
	default:
		return text.YBottom
	}
}
