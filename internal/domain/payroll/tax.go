package payroll

import "math"

// Egyptian monthly withholding rules. The insurance wage cap, exemption and
// bracket thresholds change by decree; they are constants here until that
// happens again.
const (
	insuranceWageCap = 12600.0
	insuranceRate    = 0.11
	monthlyExemption = 1666.0
)

// Withholding is the statutory deduction pair for one month of gross pay.
// Both amounts are whole currency units.
type Withholding struct {
	SocialInsurance float64 `json:"socialInsurance"`
	IncomeTax       float64 `json:"incomeTax"`
}

// CalculateWithholding computes social insurance and income tax from monthly
// gross pay. Income tax is assessed on the annualized taxable amount with
// progressive brackets, then divided back to a monthly figure. Negative gross
// is not clamped; callers own that policy.
func CalculateWithholding(gross float64) Withholding {
	insurable := math.Min(gross, insuranceWageCap)
	socialInsurance := Round(insurable * insuranceRate)

	taxableMonthly := gross - socialInsurance - monthlyExemption
	if taxableMonthly < 0 {
		taxableMonthly = 0
	}
	annual := taxableMonthly * 12

	var tax float64
	if annual > 40000 {
		if annual <= 55000 {
			tax += (annual - 40000) * 0.10
		} else {
			tax += 1500
			if annual <= 70000 {
				tax += (annual - 55000) * 0.15
			} else {
				tax += 2250
				if annual <= 200000 {
					tax += (annual - 70000) * 0.20
				} else {
					tax += 26000
					if annual <= 400000 {
						tax += (annual - 200000) * 0.225
					} else {
						tax += 45000
						tax += (annual - 400000) * 0.25
					}
				}
			}
		}
	}

	return Withholding{
		SocialInsurance: socialInsurance,
		IncomeTax:       Round(tax / 12),
	}
}
