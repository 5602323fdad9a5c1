// internal/recipient/recipient.go
package recipient

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

// Recipient is one row of the uploaded company list, the target of one
// email. Extra carries every original column through unchanged so templates
// and personalization prompts can reference them.
type Recipient struct {
	Company string            `json:"company"`
	Email   string            `json:"email"`
	Details string            `json:"details"`
	Extra   map[string]string `json:"extra,omitempty"`
}

var emailAliases = []string{"email", "emails", "e-mail", "mail", "email id", "email address"}

var companyAliases = []string{"company", "company name", "company_name", "firm", "organization"}

var detailsAliases = []string{"details", "description", "company_description", "company description"}

// ParseCSV reads the uploaded company list and returns one Recipient per
// usable row. It fails with a ValidationError before any row is processed
// when no email column can be resolved, so no network call is ever made for
// a malformed file. Rows whose email cell has no '@' are skipped.
func ParseCSV(r io.Reader) ([]Recipient, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, appErrors.NewValidationError("malformed CSV: %v", err)
	}
	if len(records) < 1 {
		return nil, appErrors.NewValidationError("file is empty")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	rows := records[1:]

	emailCol := findColumn(header, emailAliases)
	if emailCol < 0 {
		emailCol = guessEmailColumn(header, rows)
	}
	if emailCol < 0 {
		return nil, appErrors.NewValidationError("no email column found in file (expected a column named Email)")
	}

	companyCol := findColumn(header, companyAliases)
	detailsCol := findColumn(header, detailsAliases)

	var recipients []Recipient
	for i, row := range rows {
		email := strings.TrimSpace(cell(row, emailCol))
		if !strings.Contains(email, "@") {
			continue
		}

		rec := Recipient{
			Email: email,
			Extra: make(map[string]string, len(header)),
		}
		for j, name := range header {
			rec.Extra[name] = strings.TrimSpace(cell(row, j))
		}
		if companyCol >= 0 {
			rec.Company = strings.TrimSpace(cell(row, companyCol))
		}
		if rec.Company == "" {
			rec.Company = fmt.Sprintf("Company %d", i+1)
		}
		if detailsCol >= 0 {
			rec.Details = strings.TrimSpace(cell(row, detailsCol))
		}

		recipients = append(recipients, rec)
	}

	return recipients, nil
}

func findColumn(header []string, aliases []string) int {
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		for _, a := range aliases {
			if lower == a {
				return i
			}
		}
	}
	return -1
}

// guessEmailColumn falls back to the column where more than half of the
// values contain '@', matching how messy exports name their email column.
func guessEmailColumn(header []string, rows [][]string) int {
	if len(rows) == 0 {
		return -1
	}
	for j := range header {
		hits := 0
		for _, row := range rows {
			if strings.Contains(cell(row, j), "@") {
				hits++
			}
		}
		if hits*2 > len(rows) {
			return j
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
