package ledger

import "payledger/internal/domain/payroll"

// proratable reports whether a column's value scales with worked days.
// Overtime is derived from hours against the unprorated basic, and bonus is a
// flat award; neither follows the worked-days ratio.
func proratable(c Column) bool {
	return c.Kind == Entitlement && c.Key != KeyOvertime && c.Key != KeyBonus
}

// ApplyRatio sets the record's worked days and rescales every tracked
// proratable field from its base value. For any tracked key,
// current = Round(base * workedDays/standardDays), so applying the full
// period restores the base exactly and repeated applications are idempotent.
func ApplyRatio(rec *Record, schema Schema, workedDays float64, cfg payroll.Config) {
	rec.WorkedDays = workedDays
	ratio := cfg.Ratio(workedDays)

	scaled := false
	for _, c := range schema {
		if !proratable(c) {
			continue
		}
		if base, ok := rec.BaseValue(c.Key); ok {
			rec.SetField(c.Key, payroll.Round(base*ratio))
			if c.Key == KeyBasic {
				scaled = true
			}
		}
	}
	// basic is tracked even when the schema does not list it.
	if !scaled {
		if base, ok := rec.BaseValue(KeyBasic); ok {
			rec.SetField(KeyBasic, payroll.Round(base*ratio))
		}
	}

	refreshOvertime(rec, cfg)
}

// RecordDirectEdit stores a directly edited value and re-anchors its base so
// future worked-days changes scale from the edit, not from the imported
// value. The edit is authoritative for the current period.
func RecordDirectEdit(rec *Record, key string, value float64, cfg payroll.Config) {
	rec.SetField(key, value)
	ratio := cfg.Ratio(rec.WorkedDays)
	if ratio <= 0 {
		ratio = 1
	}
	rec.SetBaseValue(key, payroll.Round(value/ratio))
}

// refreshOvertime recomputes the derived overtime field from the three hour
// tiers against the unprorated basic salary.
func refreshOvertime(rec *Record, cfg payroll.Config) {
	rec.SetField(KeyOvertime, payroll.CompositeOvertime(
		rec.baseBasic(), rec.OTDayHours, rec.OTNightHours, rec.OTHolidayHours, cfg.Divisor()))
}

// ApplyOvertime adds a one-off overtime amount at the given rate, the only
// additive write path into the otherwise derived overtime field.
func ApplyOvertime(rec *Record, hours, rate float64, cfg payroll.Config) float64 {
	v := payroll.OvertimeValue(rec.Field(KeyBasic), hours, rate, cfg.Divisor())
	rec.SetField(KeyOvertime, rec.Field(KeyOvertime)+v)
	return v
}
