package calculator

import (
	"fmt"
	"time"
)

// AlignmentError reports an input series that cannot be joined on timestamp.
type AlignmentError struct {
	Series string
	Time   time.Time
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("align: duplicate timestamp %s in series %s", e.Time.Format(time.RFC3339), e.Series)
}

// ArithmeticError reports a relative price that is not a finite positive number.
type ArithmeticError struct {
	Time   time.Time
	CloseA float64
	CloseB float64
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("ratio at %s: %g / %g is not a finite positive value",
		e.Time.Format(time.RFC3339), e.CloseA, e.CloseB)
}
