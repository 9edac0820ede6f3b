package ledger

import "payledger/internal/domain/payroll"

// Totals is the schema-driven summary of one record. NetPay is always exactly
// GrossEarnings - TotalDeductions; no rounding happens at aggregation.
type Totals struct {
	GrossEarnings   float64 `json:"grossEarnings"`
	TotalDeductions float64 `json:"totalDeductions"`
	NetPay          float64 `json:"netPay"`
}

// Aggregate sums the record's fields under the active schema. Fields missing
// from the record count as 0; record fields with no matching column are
// orphaned and ignored.
func Aggregate(rec *Record, schema Schema) Totals {
	var t Totals
	for _, c := range schema {
		switch c.Kind {
		case Entitlement:
			t.GrossEarnings += rec.Field(c.Key)
		case Deduction:
			t.TotalDeductions += rec.Field(c.Key)
		}
	}
	t.NetPay = t.GrossEarnings - t.TotalDeductions
	return t
}

func NetPay(rec *Record, schema Schema) float64 {
	return Aggregate(rec, schema).NetPay
}

// Prorated reports whether the record covers less (or more) than the
// standard period.
func (r *Record) Prorated(cfg payroll.Config) bool {
	return r.WorkedDays != cfg.StandardDays
}
