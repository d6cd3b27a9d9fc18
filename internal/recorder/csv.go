package recorder

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"poolratio/internal/model"
)

var csvHeader = []string{"timestamp", "close_a", "close_b", "relative_price"}

// WriteAlignedCSV writes the aligned table; absent values are empty cells.
func WriteAlignedCSV(w io.Writer, rows []model.AlignedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Time.UTC().Format(time.RFC3339),
			f(r.CloseA),
			f(r.CloseB),
			f(r.RelativePrice),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportAlignedCSV writes the snapshot's aligned table to path.
// Nothing is written when encoding fails.
func ExportAlignedCSV(path string, snap *model.PairSnapshot) error {
	var buf bytes.Buffer
	if err := WriteAlignedCSV(&buf, snap.Rows); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		os.Remove(path)
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func f(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
