package payroll

import "math"

// Round rounds to the nearest whole currency unit, halves toward positive
// infinity. All monetary values in the ledger are produced through this one
// function so proration stays exactly reversible at ratio 1.
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}
