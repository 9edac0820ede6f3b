package payroll

// Config carries the payroll calendar settings every calculation depends on.
// It is passed explicitly into each operation; nothing in this package or in
// the ledger package reads ambient state.
type Config struct {
	// StandardDays is the number of working days in a full pay period.
	StandardDays float64
	// HoursPerDay is the contracted hours per working day.
	HoursPerDay float64
	// EmailDomain is appended to addresses derived from employee names.
	EmailDomain string
}

func DefaultConfig() Config {
	return Config{StandardDays: 30, HoursPerDay: 8, EmailDomain: "example.com"}
}

// Divisor is the assumed total working hours per month, used to derive an
// hourly rate for overtime.
func (c Config) Divisor() float64 {
	return c.StandardDays * c.HoursPerDay
}

// Ratio returns the worked-days proration ratio. A non-positive standard
// yields 1 so callers never divide by zero.
func (c Config) Ratio(workedDays float64) float64 {
	if c.StandardDays <= 0 {
		return 1
	}
	return workedDays / c.StandardDays
}
