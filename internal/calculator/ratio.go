package calculator

import (
	"math"

	"poolratio/internal/model"
)

// ApplyRatios sets RelativePrice = CloseA / CloseB on every row that has both
// closes. Rows missing either close keep a nil ratio.
func ApplyRatios(rows []model.AlignedRow) error {
	for i := range rows {
		r := &rows[i]
		if r.CloseA == nil || r.CloseB == nil {
			r.RelativePrice = nil
			continue
		}
		ratio, err := Ratio(*r.CloseA, *r.CloseB)
		if err != nil {
			err.Time = r.Time
			return err
		}
		r.RelativePrice = &ratio
	}
	return nil
}

// Ratio divides a by b and rejects zero divisors and non-finite or non-positive results.
func Ratio(a, b float64) (float64, *ArithmeticError) {
	if b == 0 {
		return math.NaN(), &ArithmeticError{CloseA: a, CloseB: b}
	}
	v := a / b
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return v, &ArithmeticError{CloseA: a, CloseB: b}
	}
	return v, nil
}
