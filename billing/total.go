package billing

import (
	"fmt"
	"math"
)

// ComputeTotal returns ratePerTon * trucks. The product is not rounded;
// display rounding is left to the caller.
func ComputeTotal(ratePerTon float64, trucks int) (float64, error) {
	if math.IsNaN(ratePerTon) || math.IsInf(ratePerTon, 0) || ratePerTon < 0 {
		return 0, fmt.Errorf("%w: ratePerTon must be a finite number >= 0", ErrInvalidInput)
	}
	if trucks < 1 {
		return 0, fmt.Errorf("%w: trucks must be >= 1", ErrInvalidInput)
	}
	return ratePerTon * float64(trucks), nil
}
