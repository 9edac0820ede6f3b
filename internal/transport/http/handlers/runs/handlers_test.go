package runshandler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRawValue(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"5000"`, "5000"},
		{`5000`, "5000"},
		{`2612.5`, "2612.5"},
		{`"John Doe"`, "John Doe"},
		{`""`, ""},
		{`true`, "true"},
	}
	for _, tc := range cases {
		if got := rawValue(json.RawMessage(tc.in)); got != tc.want {
			t.Errorf("rawValue(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTemplateDownload(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/runs/template", nil)

	h.handleTemplate(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q, want text/csv", ct)
	}
	body := rec.Body.String()
	for _, header := range []string{"Name", "Worked Days", "Basic", "OT 1.35x"} {
		if !strings.Contains(body, header) {
			t.Errorf("template missing header %q", header)
		}
	}
}
