package ledger

import (
	"fmt"
	"strings"
)

// Kind classifies a column as adding to or subtracting from gross earnings.
type Kind string

const (
	Entitlement Kind = "entitlement"
	Deduction   Kind = "deduction"
)

// Well-known column keys. basic, overtime and bonus make up the default
// schema; the statutory pair is added on demand by the tax operation.
const (
	KeyBasic           = "basic"
	KeyOvertime        = "overtime"
	KeyBonus           = "bonus"
	KeySocialInsurance = "social_ins"
	KeyIncomeTax       = "income_tax"
)

// Column is one dynamic financial field of the ledger.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  Kind   `json:"type"`
}

// Schema is the ordered set of columns a payroll run carries besides the
// fixed identity fields. It grows through Add or CSV header inference and
// never shrinks automatically.
type Schema []Column

func DefaultSchema() Schema {
	return Schema{
		{Key: KeyBasic, Label: "Basic Salary", Kind: Entitlement},
		{Key: KeyOvertime, Label: "Overtime", Kind: Entitlement},
		{Key: KeyBonus, Label: "Bonus", Kind: Entitlement},
	}
}

// Preset column labels offered by the editing surface.
var (
	PresetEntitlements = []string{"Transportation", "Meal Allowance", "Shift Allowance", "KPI Bonus"}
	PresetDeductions   = []string{"Medical Insurance", "Social Security", "Absenteeism", "Loan Repayment", "Lateness Penalty", "Income Tax"}
)

// MandatoryPayslipKeys always render on a payslip even when zero.
var MandatoryPayslipKeys = []string{KeyBasic, KeySocialInsurance, KeyIncomeTax}

// DuplicateColumnError is returned when an add would reuse an existing key.
type DuplicateColumnError struct {
	Key string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %q already exists", e.Key)
}

// KeyFor derives a machine key from a display label: lowercased, whitespace
// runs collapsed to underscores.
func KeyFor(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "_")
}

func (s Schema) Find(key string) (Column, bool) {
	for _, c := range s {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func (s Schema) FindByLabel(label string) (Column, bool) {
	for _, c := range s {
		if strings.EqualFold(c.Label, label) {
			return c, true
		}
	}
	return Column{}, false
}

// Add appends a column with a key derived from the label.
func (s *Schema) Add(label string, kind Kind) (Column, error) {
	return s.AddWithKey(KeyFor(label), label, kind)
}

// AddWithKey appends a column under an explicit key, as import logic does.
// The schema is left unchanged when the key is already taken.
func (s *Schema) AddWithKey(key, label string, kind Kind) (Column, error) {
	if _, ok := s.Find(key); ok {
		return Column{}, &DuplicateColumnError{Key: key}
	}
	col := Column{Key: key, Label: label, Kind: kind}
	*s = append(*s, col)
	return col, nil
}

func (s Schema) Entitlements() []Column {
	return s.byKind(Entitlement)
}

func (s Schema) Deductions() []Column {
	return s.byKind(Deduction)
}

func (s Schema) byKind(kind Kind) []Column {
	var out []Column
	for _, c := range s {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// EnsureStatutory makes sure the social insurance and income tax deduction
// columns exist, returning any that were added.
func (s *Schema) EnsureStatutory() []Column {
	var added []Column
	if col, err := s.AddWithKey(KeySocialInsurance, "Social Insurance", Deduction); err == nil {
		added = append(added, col)
	}
	if col, err := s.AddWithKey(KeyIncomeTax, "Income Tax", Deduction); err == nil {
		added = append(added, col)
	}
	return added
}
