package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/recipient"
)

// maxCSVBytes caps target-list uploads at 10 MB.
const maxCSVBytes = 10 << 20

type UploadHandler struct{}

// UploadCSV handles POST /api/upload: parse the target list and return the
// recipients so the UI can preview them before drafting.
func (h *UploadHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVBytes)
	if err := r.ParseMultipartForm(maxCSVBytes); err != nil {
		writeError(w, appErrors.NewValidationError("file too large or malformed upload (max 10MB)"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, appErrors.NewValidationError("no file provided"))
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".csv" {
		writeError(w, appErrors.NewValidationError("only .csv files are supported"))
		return
	}

	recipients, err := recipient.ParseCSV(file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"filename":   header.Filename,
		"total":      len(recipients),
		"recipients": recipients,
	})
}
