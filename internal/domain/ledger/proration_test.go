package ledger

import (
	"testing"

	"payledger/internal/domain/payroll"
)

func halfMonthRecord() *Record {
	return &Record{
		ID:         "EG1000",
		Name:       "Alice",
		WorkedDays: 15,
		Fields:     map[string]float64{KeyBasic: 5000},
		BaseValues: map[string]float64{KeyBasic: 10000},
	}
}

func TestApplyRatioRestoresBase(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := halfMonthRecord()

	ApplyRatio(rec, DefaultSchema(), 30, cfg)
	if got := rec.Field(KeyBasic); got != 10000 {
		t.Errorf("basic after full month = %v, want 10000", got)
	}
	ApplyRatio(rec, DefaultSchema(), 15, cfg)
	if got := rec.Field(KeyBasic); got != 5000 {
		t.Errorf("basic after half month = %v, want 5000", got)
	}
}

func TestApplyRatioIdempotent(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := halfMonthRecord()

	ApplyRatio(rec, DefaultSchema(), 20, cfg)
	first := rec.Field(KeyBasic)
	ApplyRatio(rec, DefaultSchema(), 20, cfg)
	if got := rec.Field(KeyBasic); got != first {
		t.Errorf("second apply changed basic: %v != %v", got, first)
	}
}

func TestApplyRatioScalesOnlyProratable(t *testing.T) {
	cfg := payroll.DefaultConfig()
	schema := DefaultSchema()
	schema.EnsureStatutory()
	rec := &Record{
		WorkedDays: 30,
		Fields: map[string]float64{
			KeyBasic: 10000, KeyBonus: 500, KeySocialInsurance: 1100,
		},
		BaseValues: map[string]float64{
			KeyBasic: 10000, KeyBonus: 500,
		},
	}

	ApplyRatio(rec, schema, 15, cfg)
	if got := rec.Field(KeyBasic); got != 5000 {
		t.Errorf("basic = %v, want 5000", got)
	}
	if got := rec.Field(KeyBonus); got != 500 {
		t.Errorf("bonus should not scale: %v", got)
	}
	if got := rec.Field(KeySocialInsurance); got != 1100 {
		t.Errorf("deduction should not scale: %v", got)
	}
}

func TestApplyRatioRefreshesOvertimeFromBase(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := halfMonthRecord()
	rec.OTDayHours = 2

	ApplyRatio(rec, DefaultSchema(), 15, cfg)
	// 10000/240 * 2 * 1.35 = 112.5, rounded to 113.
	if got := rec.Field(KeyOvertime); got != 113 {
		t.Errorf("overtime = %v, want 113", got)
	}
}

func TestRecordDirectEditReanchors(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := halfMonthRecord()

	RecordDirectEdit(rec, KeyBasic, 6000, cfg)
	if base, _ := rec.BaseValue(KeyBasic); base != 12000 {
		t.Errorf("base after half-month edit = %v, want 12000", base)
	}
	ApplyRatio(rec, DefaultSchema(), 30, cfg)
	if got := rec.Field(KeyBasic); got != 12000 {
		t.Errorf("basic after full month = %v, want 12000", got)
	}
}

func TestRecordDirectEditAtZeroWorkedDays(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := &Record{Fields: map[string]float64{}, BaseValues: map[string]float64{}}

	RecordDirectEdit(rec, KeyBasic, 8000, cfg)
	if base, _ := rec.BaseValue(KeyBasic); base != 8000 {
		t.Errorf("base at zero worked days = %v, want 8000", base)
	}
}

func TestApplyOvertimeIsAdditive(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := &Record{
		WorkedDays: 30,
		Fields:     map[string]float64{KeyBasic: 10000, KeyOvertime: 113},
	}

	added := ApplyOvertime(rec, 4, payroll.RateHoliday, cfg)
	// 10000/240 * 4 * 2 = 333.33..., rounded to 333.
	if added != 333 {
		t.Errorf("added = %v, want 333", added)
	}
	if got := rec.Field(KeyOvertime); got != 446 {
		t.Errorf("overtime = %v, want 446", got)
	}
}
