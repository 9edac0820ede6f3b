package ledger

import (
	"encoding/json"
	"strings"
	"testing"

	"payledger/internal/domain/payroll"
)

func TestNewRecordDefaults(t *testing.T) {
	cfg := payroll.DefaultConfig()
	rec := NewRecord(cfg)
	if !strings.HasPrefix(rec.ID, "EG") {
		t.Errorf("id = %q, want EG prefix", rec.ID)
	}
	if rec.Email != "new.employee@example.com" {
		t.Errorf("email = %q", rec.Email)
	}
	if rec.WorkedDays != cfg.StandardDays {
		t.Errorf("workedDays = %v, want %v", rec.WorkedDays, cfg.StandardDays)
	}
	if rec.Currency != DefaultCurrency {
		t.Errorf("currency = %q, want %q", rec.Currency, DefaultCurrency)
	}
}

func TestDeriveEmail(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"John Doe", "john.doe@example.com"},
		{"  Mary   Anne  Smith ", "mary.anne.smith@example.com"},
		{"ALICE", "alice@example.com"},
	}
	for _, tc := range cases {
		if got := DeriveEmail(tc.name, "example.com"); got != tc.want {
			t.Errorf("DeriveEmail(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := &Record{
		ID:         "EG1234",
		Name:       "Alice Smith",
		Email:      "alice.smith@example.com",
		Currency:   "EGP",
		WorkedDays: 15,
		OTDayHours: 2,
		Fields:     map[string]float64{"basic": 5000, "overtime": 113, "loan": 250},
		BaseValues: map[string]float64{"basic": 10000},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal into map: %v", err)
	}
	if doc["basic"] != float64(5000) {
		t.Errorf("dynamic field not flattened: basic = %v", doc["basic"])
	}
	if doc["name"] != "Alice Smith" {
		t.Errorf("name = %v", doc["name"])
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Name != rec.Name || back.WorkedDays != rec.WorkedDays {
		t.Errorf("fixed fields lost: %+v", back)
	}
	if back.Field("loan") != 250 {
		t.Errorf("dynamic field lost: loan = %v", back.Field("loan"))
	}
	if base, ok := back.BaseValue("basic"); !ok || base != 10000 {
		t.Errorf("base value lost: %v %v", base, ok)
	}
}

func TestRecordMarshalShadowsReservedKeys(t *testing.T) {
	rec := &Record{
		ID:     "EG1",
		Name:   "Bob",
		Fields: map[string]float64{"name": 99, "basic": 100},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["name"] != "Bob" {
		t.Errorf("reserved key overridden by dynamic field: name = %v", doc["name"])
	}
}

func TestRecordUnmarshalDropsNonNumericExtras(t *testing.T) {
	var rec Record
	blob := `{"id":"EG1","name":"Bob","basic":100,"notes":"call HR","workedDays":30}`
	if err := json.Unmarshal([]byte(blob), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Field("basic") != 100 {
		t.Errorf("basic = %v", rec.Field("basic"))
	}
	if _, ok := rec.Fields["notes"]; ok {
		t.Error("non-numeric extra should be dropped")
	}
}
