// Package docparse extracts plain text from uploaded campaign documents
// (PDF/DOCX) and builds the default email template from the structured
// campaign info the assistant pulls out of them.
package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mailpilot/mailpilot-backend/internal/ai"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

// AllowedExt reports whether the upload has a parseable extension.
func AllowedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".doc":
		return true
	}
	return false
}

// ExtractText pulls plain text out of a stored document.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".docx", ".doc":
		return extractDOCX(path)
	default:
		return "", appErrors.NewValidationError("unsupported file type %q, use PDF or DOCX", filepath.Ext(path))
	}
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", appErrors.NewValidationError("error reading PDF: %v", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", appErrors.NewValidationError("error reading PDF text: %v", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("docparse: read pdf text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// extractDOCX reads the word/document.xml part of the OOXML archive and
// collects text runs, one line per paragraph.
func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", appErrors.NewValidationError("error reading DOCX: %v", err)
	}
	defer zr.Close()

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("docparse: open document.xml: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return "", appErrors.NewValidationError("not a valid DOCX file: missing word/document.xml")
	}
	defer doc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(doc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", appErrors.NewValidationError("error parsing DOCX: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// BuildTemplate turns extracted campaign info into the default email
// template, with {{company}} and {{why}} left for per-recipient filling.
func BuildTemplate(info ai.CampaignInfo) string {
	goal := info.Goal
	if goal == "" || goal == "Not specified" {
		goal = "I would love to discuss how we can work together."
	}

	return fmt.Sprintf(`Dear {{company}},

%s

{{why}}

%s

%s

%s

Best regards,
%s`, info.Description, info.ValueProps, info.Metrics, goal, info.Company)
}
