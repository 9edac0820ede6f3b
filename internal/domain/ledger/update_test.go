package ledger

import (
	"testing"

	"payledger/internal/domain/payroll"
)

func TestUpdateFieldNameRegeneratesEmail(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := NewRecord(cfg)
	rec.Email = "manual@other.com"

	UpdateField(rec, DefaultSchema(), cfg, "name", "  John Doe ")
	if rec.Name != "John Doe" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Email != "john.doe@example.com" {
		t.Errorf("email = %q, want derived address", rec.Email)
	}
}

func TestUpdateFieldIdentity(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := NewRecord(cfg)

	UpdateField(rec, DefaultSchema(), cfg, "iban", "EG380019000500000000263180002")
	if rec.IBAN != "EG380019000500000000263180002" {
		t.Errorf("iban = %q", rec.IBAN)
	}
	UpdateField(rec, DefaultSchema(), cfg, "email", "custom@corp.com")
	if rec.Email != "custom@corp.com" {
		t.Errorf("direct email edit lost: %q", rec.Email)
	}
}

func TestUpdateFieldWorkedDaysProrates(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := halfMonthRecord()

	UpdateField(rec, DefaultSchema(), cfg, "workedDays", "30")
	if rec.WorkedDays != 30 {
		t.Errorf("workedDays = %v", rec.WorkedDays)
	}
	if got := rec.Field(KeyBasic); got != 10000 {
		t.Errorf("basic = %v, want 10000", got)
	}
}

func TestUpdateFieldOvertimeHours(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := &Record{
		WorkedDays: 30,
		Fields:     map[string]float64{KeyBasic: 10000},
		BaseValues: map[string]float64{KeyBasic: 10000},
	}

	UpdateField(rec, DefaultSchema(), cfg, "otDayHours", "2")
	if rec.OTDayHours != 2 {
		t.Errorf("otDayHours = %v", rec.OTDayHours)
	}
	if got := rec.Field(KeyOvertime); got != 113 {
		t.Errorf("overtime = %v, want 113", got)
	}
}

func TestUpdateFieldBasicEditCascades(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := &Record{
		WorkedDays: 30,
		OTDayHours: 2,
		Fields:     map[string]float64{KeyBasic: 10000, KeyOvertime: 113},
		BaseValues: map[string]float64{KeyBasic: 10000},
	}

	UpdateField(rec, DefaultSchema(), cfg, KeyBasic, "12000")
	if base, _ := rec.BaseValue(KeyBasic); base != 12000 {
		t.Errorf("base = %v, want 12000", base)
	}
	// 12000/240 * 2 * 1.35 = 135.
	if got := rec.Field(KeyOvertime); got != 135 {
		t.Errorf("overtime = %v, want 135", got)
	}
}

func TestUpdateFieldUntrackedColumnStaysFlat(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := NewRecord(cfg)

	UpdateField(rec, DefaultSchema(), cfg, KeyBonus, "750")
	if got := rec.Field(KeyBonus); got != 750 {
		t.Errorf("bonus = %v", got)
	}
	if _, ok := rec.BaseValue(KeyBonus); ok {
		t.Error("flat award should not be base-tracked by a direct edit")
	}
}

func TestUpdateFieldInvalidNumberBecomesZero(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := NewRecord(cfg)
	rec.SetField(KeyBonus, 500)

	UpdateField(rec, DefaultSchema(), cfg, KeyBonus, "abc")
	if got := rec.Field(KeyBonus); got != 0 {
		t.Errorf("bonus = %v, want 0", got)
	}
}

func TestUpdateFieldIgnoresUnknownAndDerived(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := &Record{
		WorkedDays: 30,
		Fields:     map[string]float64{KeyOvertime: 113},
	}

	UpdateField(rec, DefaultSchema(), cfg, "no_such_field", "42")
	if _, ok := rec.Fields["no_such_field"]; ok {
		t.Error("unknown field should be ignored")
	}
	UpdateField(rec, DefaultSchema(), cfg, KeyOvertime, "999")
	if got := rec.Field(KeyOvertime); got != 113 {
		t.Errorf("derived overtime should be read-only, got %v", got)
	}
}
