package ledger

import (
	"testing"

	"payledger/internal/domain/payroll"
)

func TestAggregate(t *testing.T) {
	schema := DefaultSchema()
	schema.EnsureStatutory()
	rec := &Record{
		Fields: map[string]float64{
			KeyBasic: 10000, KeyOvertime: 113, KeyBonus: 500,
			KeySocialInsurance: 1100, KeyIncomeTax: 935,
		},
	}

	got := Aggregate(rec, schema)
	if got.GrossEarnings != 10613 {
		t.Errorf("gross = %v, want 10613", got.GrossEarnings)
	}
	if got.TotalDeductions != 2035 {
		t.Errorf("deductions = %v, want 2035", got.TotalDeductions)
	}
	if got.NetPay != 8578 {
		t.Errorf("net = %v, want 8578", got.NetPay)
	}
}

func TestAggregateIgnoresOrphanedFields(t *testing.T) {
	rec := &Record{Fields: map[string]float64{KeyBasic: 1000, "old_column": 400}}
	got := Aggregate(rec, DefaultSchema())
	if got.GrossEarnings != 1000 {
		t.Errorf("gross = %v, want 1000 (orphaned field must not count)", got.GrossEarnings)
	}
}

func TestAggregateMissingFieldsCountAsZero(t *testing.T) {
	rec := &Record{Fields: map[string]float64{KeyBasic: 1000}}
	got := Aggregate(rec, DefaultSchema())
	if got.NetPay != 1000 {
		t.Errorf("net = %v, want 1000", got.NetPay)
	}
}

func TestApplyStatutoryDeductions(t *testing.T) {
	schema := DefaultSchema()
	rec := &Record{Fields: map[string]float64{KeyBasic: 14000, KeyBonus: 1000}}

	added := ApplyStatutoryDeductions(&schema, []*Record{rec})
	if len(added) != 2 {
		t.Fatalf("added %d columns, want 2", len(added))
	}
	// Gross 15000: insurance 12600*0.11 = 1386, monthly tax 1535.
	if got := rec.Field(KeySocialInsurance); got != 1386 {
		t.Errorf("social insurance = %v, want 1386", got)
	}
	if got := rec.Field(KeyIncomeTax); got != 1535 {
		t.Errorf("income tax = %v, want 1535", got)
	}

	// Rerunning must recompute in place without duplicating columns.
	rec.SetField(KeyBasic, 0)
	rec.SetField(KeyBonus, 0)
	if again := ApplyStatutoryDeductions(&schema, []*Record{rec}); len(again) != 0 {
		t.Errorf("second run added %d columns", len(again))
	}
	if got := rec.Field(KeyIncomeTax); got != 0 {
		t.Errorf("income tax after zeroing = %v, want 0", got)
	}
}

func TestProrated(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := &Record{WorkedDays: 30}
	if rec.Prorated(cfg) {
		t.Error("full period should not be prorated")
	}
	rec.WorkedDays = 15
	if !rec.Prorated(cfg) {
		t.Error("partial period should be prorated")
	}
}
