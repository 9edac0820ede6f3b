package payroll

import "testing"

func TestOvertimeValue(t *testing.T) {
	// (10000/240) * 2 * 1.35 = 112.5 -> rounds half up to 113.
	got := OvertimeValue(10000, 2, RateDay, 240)
	if got != 113 {
		t.Fatalf("expected 113, got %v", got)
	}
}

func TestOvertimeValueZeroDivisor(t *testing.T) {
	if got := OvertimeValue(10000, 5, RateNight, 0); got != 0 {
		t.Fatalf("expected 0 for zero divisor, got %v", got)
	}
	if got := OvertimeValue(10000, 5, RateNight, -240); got != 0 {
		t.Fatalf("expected 0 for negative divisor, got %v", got)
	}
}

func TestCompositeOvertime(t *testing.T) {
	// day: round((12000/240)*1*1.35) = round(67.5) = 68
	// night: round((12000/240)*2*1.7) = 170
	// holiday: round((12000/240)*3*2) = 300
	got := CompositeOvertime(12000, 1, 2, 3, 240)
	if got != 538 {
		t.Fatalf("expected 538, got %v", got)
	}
}

func TestCompositeOvertimeNoHours(t *testing.T) {
	if got := CompositeOvertime(12000, 0, 0, 0, 240); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := map[float64]float64{
		112.5:  113,
		112.49: 112,
		-0.5:   0,
		0:      0,
		41.6:   42,
	}
	for in, want := range cases {
		if got := Round(in); got != want {
			t.Fatalf("Round(%v): expected %v, got %v", in, want, got)
		}
	}
}
