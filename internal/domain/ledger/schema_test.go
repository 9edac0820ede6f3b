package ledger

import "testing"

func TestKeyFor(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Basic", "basic"},
		{"Housing Allowance", "housing_allowance"},
		{"  Travel   Allowance ", "travel_allowance"},
		{"Social Insurance", "social_insurance"},
	}
	for _, tc := range cases {
		if got := KeyFor(tc.label); got != tc.want {
			t.Errorf("KeyFor(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestSchemaAddDuplicate(t *testing.T) {
	s := DefaultSchema()
	if _, err := s.Add("Housing Allowance", Entitlement); err != nil {
		t.Fatalf("add new column: %v", err)
	}
	_, err := s.Add("housing   allowance", Deduction)
	if err == nil {
		t.Fatal("expected duplicate error for same derived key")
	}
	dup, ok := err.(*DuplicateColumnError)
	if !ok {
		t.Fatalf("error type = %T, want *DuplicateColumnError", err)
	}
	if dup.Key != "housing_allowance" {
		t.Errorf("duplicate key = %q, want housing_allowance", dup.Key)
	}
}

func TestSchemaFindByLabel(t *testing.T) {
	s := DefaultSchema()
	if _, ok := s.FindByLabel("BASIC"); !ok {
		t.Error("label lookup should be case-insensitive")
	}
	if _, ok := s.FindByLabel("no such column"); ok {
		t.Error("unexpected match for unknown label")
	}
}

func TestEnsureStatutory(t *testing.T) {
	s := DefaultSchema()
	added := s.EnsureStatutory()
	if len(added) != 2 {
		t.Fatalf("added %d columns, want 2", len(added))
	}
	for _, key := range []string{KeySocialInsurance, KeyIncomeTax} {
		c, ok := s.Find(key)
		if !ok {
			t.Fatalf("column %q missing after EnsureStatutory", key)
		}
		if c.Kind != Deduction {
			t.Errorf("column %q kind = %q, want deduction", key, c.Kind)
		}
	}
	if again := s.EnsureStatutory(); len(again) != 0 {
		t.Errorf("second EnsureStatutory added %d columns, want 0", len(again))
	}
}

func TestSchemaByKind(t *testing.T) {
	s := DefaultSchema()
	s.EnsureStatutory()
	if n := len(s.Entitlements()); n != 3 {
		t.Errorf("entitlements = %d, want 3", n)
	}
	if n := len(s.Deductions()); n != 2 {
		t.Errorf("deductions = %d, want 2", n)
	}
}
