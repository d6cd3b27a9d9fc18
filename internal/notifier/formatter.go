package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"poolratio/internal/model"
)

// FormatCaption formats the chart caption for a collected pair.
func FormatCaption(snap *model.PairSnapshot, stats *model.RatioStats) string {
	a, b := html.EscapeString(snap.Pair.A.Label), html.EscapeString(snap.Pair.B.Label)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>%s / %s</b> | %s\n", a, b, snap.FetchedAt.UTC().Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("%s · %d days · %s candles\n\n", snap.Pair.Network, snap.Pair.DaysBack, snap.Pair.Resolution))
	if stats != nil {
		sb.WriteString(FormatRatioSummary(snap.Pair.A.Label, snap.Pair.B.Label, stats))
	}
	if latest, ok := snap.A.Latest(); ok {
		sb.WriteString(fmt.Sprintf("\n%s: %.4f", a, latest.Close))
	}
	if latest, ok := snap.B.Latest(); ok {
		sb.WriteString(fmt.Sprintf("\n%s: %.4f", b, latest.Close))
	}
	return sb.String()
}

// FormatRatioSummary formats the window statistics of the relative price.
// Labels are escaped for Telegram HTML.
func FormatRatioSummary(a, b string, stats *model.RatioStats) string {
	a, b = html.EscapeString(a), html.EscapeString(b)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s/%s: %.2f | %s/%s: %.2f\n", a, b, stats.Current, b, a, 1/stats.Current))
	sb.WriteString(fmt.Sprintf("Window range: %.4f – %.4f (position %.0f%%)\n", stats.Low, stats.High, stats.Position*100))
	return sb.String()
}

// FormatFailure formats a failed run for the chat.
func FormatFailure(when time.Time, err error) string {
	return fmt.Sprintf("❌ <b>chart run failed</b> | %s\n%s", when.UTC().Format("2006-01-02 15:04"), html.EscapeString(err.Error()))
}
