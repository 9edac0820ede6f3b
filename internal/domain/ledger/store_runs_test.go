package ledger

import "testing"

func TestBuildPayslip(t *testing.T) {
	schema := DefaultSchema()
	schema.EnsureStatutory()
	run := &Run{ID: "r1", Period: Period{Month: 2, Year: 2026}, Schema: schema}
	rec := &Record{
		ID: "EG1234", Name: "Alice Smith", Email: "alice.smith@example.com",
		Fields: map[string]float64{
			KeyBasic: 10000, KeyOvertime: 113,
			KeySocialInsurance: 1100, KeyIncomeTax: 0,
		},
	}

	slip := BuildPayslip(rec, run)
	if slip.PeriodLabel != "March 2026" {
		t.Errorf("period label = %q", slip.PeriodLabel)
	}
	if slip.Currency != DefaultCurrency {
		t.Errorf("currency fallback = %q", slip.Currency)
	}
	if slip.Gross != 10113 || slip.Deductions != 1100 || slip.Net != 9013 {
		t.Errorf("totals = %v/%v/%v", slip.Gross, slip.Deductions, slip.Net)
	}

	labels := map[string]bool{}
	for _, line := range slip.Lines {
		labels[line.Label] = true
	}
	// Zero income tax stays because it is statutory; zero bonus drops.
	if !labels["Income Tax"] {
		t.Error("statutory zero line missing")
	}
	if labels["Bonus"] {
		t.Error("zero bonus line should be dropped")
	}
}
