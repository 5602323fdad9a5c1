package recipient

import (
	"errors"
	"strings"
	"testing"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

func TestParseCSV(t *testing.T) {
	csvData := "Company,Email,Details,Website\n" +
		"Acme,founders@acme.io,AI-focused VC,acme.io\n" +
		"Globex,invest@globex.com,Seed fund,globex.com\n"

	recs, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(recs))
	}
	if recs[0].Company != "Acme" || recs[0].Email != "founders@acme.io" {
		t.Errorf("unexpected first recipient: %+v", recs[0])
	}
	if recs[0].Details != "AI-focused VC" {
		t.Errorf("details not picked up: %+v", recs[0])
	}
	if recs[0].Extra["Website"] != "acme.io" {
		t.Errorf("extra columns should be carried through, got %v", recs[0].Extra)
	}
}

func TestParseCSVCompanyNameAlias(t *testing.T) {
	csvData := "Company Name,Email\nAcme,a@acme.io\n"
	recs, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].Company != "Acme" {
		t.Errorf("Company Name alias not resolved, got %q", recs[0].Company)
	}
}

func TestParseCSVMissingEmailColumn(t *testing.T) {
	csvData := "Company,Details\nAcme,VC firm\n"
	_, err := ParseCSV(strings.NewReader(csvData))
	if err == nil {
		t.Fatal("expected error for missing email column")
	}
	var verr *appErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestParseCSVGuessesEmailColumn(t *testing.T) {
	csvData := "Company,Contact\nAcme,a@acme.io\nGlobex,b@globex.com\n"
	recs, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[1].Email != "b@globex.com" {
		t.Errorf("heuristic email detection failed: %+v", recs)
	}
}

func TestParseCSVSkipsRowsWithoutEmail(t *testing.T) {
	csvData := "Company,Email\nAcme,a@acme.io\nNoMail,\n"
	recs, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("expected row without email to be skipped, got %d rows", len(recs))
	}
}

func TestParseCSVStripsBOM(t *testing.T) {
	csvData := "\uFEFFEmail,Company\na@acme.io,Acme\n"
	recs, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].Email != "a@acme.io" {
		t.Errorf("BOM should be stripped from header, got %+v", recs[0])
	}
}

func TestParseCSVFallbackCompanyName(t *testing.T) {
	csvData := "Email\na@acme.io\n"
	recs, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].Company != "Company 1" {
		t.Errorf("expected placeholder company name, got %q", recs[0].Company)
	}
}
