package ledger

import (
	"fmt"
	"time"
)

// Period identifies one payroll month. Month is zero-based, matching the
// stored run documents.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func CurrentPeriod(now time.Time) Period {
	return Period{Month: int(now.Month()) - 1, Year: now.Year()}
}

// Label renders the period for payslips and exports, e.g. "March 2026".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", time.Month(p.Month+1).String(), p.Year)
}

// Key is the stable identifier used in filenames and run lookups.
func (p Period) Key() string {
	return fmt.Sprintf("%d-%02d", p.Year, p.Month+1)
}
