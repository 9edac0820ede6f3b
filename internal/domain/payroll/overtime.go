package payroll

// Overtime rate multipliers for the three statutory tiers.
const (
	RateDay     = 1.35
	RateNight   = 1.7
	RateHoliday = 2.0
)

// OvertimeValue converts worked overtime hours into a monetary amount.
// The divisor is the hours considered a full month (standard days * hours per
// day); a non-positive divisor yields 0 rather than an error so an editing
// surface always has a number to show.
func OvertimeValue(basic, hours, rate, divisor float64) float64 {
	if divisor <= 0 {
		return 0
	}
	return Round(basic / divisor * hours * rate)
}

// CompositeOvertime sums the three overtime tiers for a record: day hours at
// 1.35x, night at 1.7x and public holidays at 2x. The basic salary passed in
// must be the unprorated one; overtime is never prorated a second time.
func CompositeOvertime(basic, dayHours, nightHours, holidayHours, divisor float64) float64 {
	return OvertimeValue(basic, dayHours, RateDay, divisor) +
		OvertimeValue(basic, nightHours, RateNight, divisor) +
		OvertimeValue(basic, holidayHours, RateHoliday, divisor)
}
