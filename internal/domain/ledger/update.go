package ledger

import (
	"strconv"
	"strings"

	"payledger/internal/domain/payroll"
)

// fieldClass tags every editable field so the update protocol dispatches on
// structure rather than scattered name checks.
type fieldClass int

const (
	classUnknown fieldClass = iota
	classIdentity
	className
	classWorkedDays
	classOvertimeHours
	classSchemaField
	classReadOnly
)

func classify(field string, schema Schema) fieldClass {
	switch field {
	case "name":
		return className
	case "id", "email", "role", "project", "bankName", "iban", "currency":
		return classIdentity
	case "workedDays":
		return classWorkedDays
	case "otDayHours", "otNightHours", "otHolidayHours":
		return classOvertimeHours
	case KeyOvertime:
		return classReadOnly
	}
	if _, ok := schema.Find(field); ok {
		return classSchemaField
	}
	return classUnknown
}

// UpdateField is the single entry point for all field-level edits. It applies
// the raw value, cascades every dependent recalculation, and always leaves
// the record in a state aggregation can price consistently. Unknown fields
// and edits to the derived overtime column are ignored.
func UpdateField(rec *Record, schema Schema, cfg payroll.Config, field, raw string) {
	switch classify(field, schema) {
	case className:
		rec.Name = strings.TrimSpace(raw)
		// A name edit always regenerates the address, even over a manual one.
		rec.Email = DeriveEmail(rec.Name, cfg.EmailDomain)

	case classIdentity:
		v := strings.TrimSpace(raw)
		switch field {
		case "id":
			rec.ID = v
		case "email":
			rec.Email = v
		case "role":
			rec.Role = v
		case "project":
			rec.Project = v
		case "bankName":
			rec.BankName = v
		case "iban":
			rec.IBAN = v
		case "currency":
			rec.Currency = v
		}

	case classWorkedDays:
		ApplyRatio(rec, schema, parseAmount(raw), cfg)

	case classOvertimeHours:
		hours := parseAmount(raw)
		switch field {
		case "otDayHours":
			rec.OTDayHours = hours
		case "otNightHours":
			rec.OTNightHours = hours
		case "otHolidayHours":
			rec.OTHolidayHours = hours
		}
		refreshOvertime(rec, cfg)

	case classSchemaField:
		v := parseAmount(raw)
		col, _ := schema.Find(field)
		_, tracked := rec.BaseValue(field)
		if field == KeyBasic || (tracked && proratable(col)) {
			RecordDirectEdit(rec, field, v, cfg)
		} else {
			rec.SetField(field, v)
		}
		if field == KeyBasic {
			refreshOvertime(rec, cfg)
		}
	}
}

// parseAmount coerces interactive numeric input, with invalid text becoming 0
// so the editing surface never throws.
func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}
