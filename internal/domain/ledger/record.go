package ledger

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"payledger/internal/domain/payroll"
)

const DefaultCurrency = "EGP"

// Record is one employee's full set of payroll fields for one pay period.
// Fields holds the dynamic financial values keyed by schema column keys;
// BaseValues keeps the full-period value of proratable fields so proration
// stays reversible.
type Record struct {
	ID      string
	Name    string
	Email   string
	Role    string
	Project string

	BankName string
	IBAN     string
	Currency string

	WorkedDays     float64
	OTDayHours     float64
	OTNightHours   float64
	OTHolidayHours float64

	Fields     map[string]float64
	BaseValues map[string]float64
}

// NewRecord returns a blank record with a generated employee id and the
// full standard period already worked.
func NewRecord(cfg payroll.Config) *Record {
	name := "New Employee"
	return &Record{
		ID:         NewEmployeeID(),
		Name:       name,
		Email:      DeriveEmail(name, cfg.EmailDomain),
		Currency:   DefaultCurrency,
		WorkedDays: cfg.StandardDays,
		Fields:     map[string]float64{},
		BaseValues: map[string]float64{},
	}
}

// NewEmployeeID generates a short display id. Ids are user-editable and not
// guaranteed unique; the importer and stores key on them regardless.
func NewEmployeeID() string {
	return fmt.Sprintf("EG%d", 1000+rand.Intn(9000))
}

// DeriveEmail builds an address from a display name: lowercased, whitespace
// collapsed to dots, at the configured domain.
func DeriveEmail(name, domain string) string {
	local := strings.Join(strings.Fields(strings.ToLower(name)), ".")
	return local + "@" + domain
}

func (r *Record) ensureMaps() {
	if r.Fields == nil {
		r.Fields = map[string]float64{}
	}
	if r.BaseValues == nil {
		r.BaseValues = map[string]float64{}
	}
}

// Field reads a financial value, treating missing keys as 0.
func (r *Record) Field(key string) float64 {
	return r.Fields[key]
}

func (r *Record) SetField(key string, v float64) {
	r.ensureMaps()
	r.Fields[key] = v
}

func (r *Record) BaseValue(key string) (float64, bool) {
	v, ok := r.BaseValues[key]
	return v, ok
}

func (r *Record) SetBaseValue(key string, v float64) {
	r.ensureMaps()
	r.BaseValues[key] = v
}

// baseBasic is the unprorated basic salary: the tracked base value when set,
// otherwise the current field.
func (r *Record) baseBasic() float64 {
	if v, ok := r.BaseValue(KeyBasic); ok {
		return v
	}
	return r.Field(KeyBasic)
}

// Fixed document keys. Dynamic financial fields are flattened alongside them,
// so a schema column whose key collides with one of these is shadowed, the
// same precedence the update protocol applies.
var reservedDocKeys = map[string]bool{
	"id": true, "name": true, "email": true, "role": true, "project": true,
	"bankName": true, "iban": true, "currency": true,
	"workedDays": true, "otDayHours": true, "otNightHours": true, "otHolidayHours": true,
	"baseValues": true,
}

// MarshalJSON flattens the dynamic fields into the top-level document.
func (r *Record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Fields)+14)
	for k, v := range r.Fields {
		if reservedDocKeys[k] {
			continue
		}
		doc[k] = v
	}
	doc["id"] = r.ID
	doc["name"] = r.Name
	doc["email"] = r.Email
	doc["role"] = r.Role
	doc["project"] = r.Project
	doc["bankName"] = r.BankName
	doc["iban"] = r.IBAN
	doc["currency"] = r.Currency
	doc["workedDays"] = r.WorkedDays
	doc["otDayHours"] = r.OTDayHours
	doc["otNightHours"] = r.OTNightHours
	doc["otHolidayHours"] = r.OTHolidayHours
	doc["baseValues"] = r.BaseValues
	return json.Marshal(doc)
}

// UnmarshalJSON is the inverse of MarshalJSON: fixed keys land on struct
// fields, every other numeric key becomes a dynamic field.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	r.ensureMaps()

	str := func(key string, dst *string) error {
		raw, ok := doc[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(raw, dst)
	}
	num := func(key string, dst *float64) error {
		raw, ok := doc[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(raw, dst)
	}

	for key, fn := range map[string]*string{
		"id": &r.ID, "name": &r.Name, "email": &r.Email, "role": &r.Role,
		"project": &r.Project, "bankName": &r.BankName, "iban": &r.IBAN,
		"currency": &r.Currency,
	} {
		if err := str(key, fn); err != nil {
			return err
		}
	}
	for key, fn := range map[string]*float64{
		"workedDays": &r.WorkedDays, "otDayHours": &r.OTDayHours,
		"otNightHours": &r.OTNightHours, "otHolidayHours": &r.OTHolidayHours,
	} {
		if err := num(key, fn); err != nil {
			return err
		}
	}
	if raw, ok := doc["baseValues"]; ok {
		if err := json.Unmarshal(raw, &r.BaseValues); err != nil {
			return err
		}
		if r.BaseValues == nil {
			r.BaseValues = map[string]float64{}
		}
	}

	for key, raw := range doc {
		if reservedDocKeys[key] {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			// Non-numeric extras are dropped rather than failing the row.
			continue
		}
		r.Fields[key] = v
	}
	return nil
}
