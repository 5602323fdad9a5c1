package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mailpilot/mailpilot-backend/internal/docparse"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

// maxDocumentBytes caps campaign document uploads at 10 MB.
const maxDocumentBytes = 10 << 20

// DocumentHandler takes a campaign document (PDF/DOCX), extracts its text,
// and has the assistant pull out structured campaign info plus a default
// email template.
type DocumentHandler struct {
	Assistant Assistant
	UploadDir string
}

// Upload handles POST /api/chatbot/upload-document: store, extract, parse.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.Assistant == nil {
		writeError(w, appErrors.NewConfigError("GROQ_API_KEY", "set it in .env to enable AI features"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		writeError(w, appErrors.NewValidationError("file too large or malformed upload (max 10MB)"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, appErrors.NewValidationError("no file provided"))
		return
	}
	defer file.Close()

	if !docparse.AllowedExt(header.Filename) {
		writeError(w, appErrors.NewValidationError("only PDF and DOCX files are supported"))
		return
	}

	dir := filepath.Join(h.UploadDir, "documents")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}

	path := filepath.Join(dir, uuid.NewString()+"_"+filepath.Base(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		writeError(w, fmt.Errorf("failed to store upload: %w", err))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeError(w, fmt.Errorf("failed to store upload: %w", err))
		return
	}
	dst.Close()

	text, err := docparse.ExtractText(path)
	if err != nil {
		writeError(w, err)
		return
	}

	info, err := h.Assistant.ParseCampaignDocument(r.Context(), text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"filename":       header.Filename,
		"campaign_info":  info,
		"email_template": docparse.BuildTemplate(info),
	})
}

// Parse handles POST /api/chatbot/parse-document for text the client
// already extracted.
func (h *DocumentHandler) Parse(w http.ResponseWriter, r *http.Request) {
	if h.Assistant == nil {
		writeError(w, appErrors.NewConfigError("GROQ_API_KEY", "set it in .env to enable AI features"))
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}

	info, err := h.Assistant.ParseCampaignDocument(r.Context(), body.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"campaign_info":  info,
		"email_template": docparse.BuildTemplate(info),
	})
}
