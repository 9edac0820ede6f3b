package ledger

import "payledger/internal/domain/payroll"

// ApplyStatutoryDeductions ensures the social insurance and income tax
// columns exist, then recomputes both values for every record from its
// entitlement gross. Returns the columns that had to be added.
func ApplyStatutoryDeductions(schema *Schema, records []*Record) []Column {
	added := schema.EnsureStatutory()
	entitlements := schema.Entitlements()
	for _, rec := range records {
		var gross float64
		for _, c := range entitlements {
			gross += rec.Field(c.Key)
		}
		w := payroll.CalculateWithholding(gross)
		rec.SetField(KeySocialInsurance, w.SocialInsurance)
		rec.SetField(KeyIncomeTax, w.IncomeTax)
	}
	return added
}
