package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/mailpilot/mailpilot-backend/internal/ai"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

// Assistant is the slice of the AI client the handlers use; tests stub it.
type Assistant interface {
	Chat(ctx context.Context, message string, chatCtx ai.ChatContext, history []ai.ChatMessage) (string, error)
	RunCommand(ctx context.Context, cmd ai.Command, arg string, chatCtx ai.ChatContext) (string, error)
	GenerateEmail(ctx context.Context, req ai.EmailRequest) (ai.EmailResult, error)
	GeneratePersonalizedEmail(ctx context.Context, row ai.RecipientRow, info ai.CampaignInfo, emailTemplate string) (ai.EmailResult, error)
	EnhanceEmail(ctx context.Context, body, company, audience string) (ai.EmailResult, error)
	AnalyzeCompany(ctx context.Context, company, details string) (ai.CompanyAnalysis, error)
	SuggestImprovements(ctx context.Context, subject, body string) ([]string, error)
	ParseCampaignDocument(ctx context.Context, text string) (ai.CampaignInfo, error)
}

var _ Assistant = (*ai.Client)(nil)

// AIHandler serves the drafting endpoints and the chat assistant. Chat
// history lives server-side for the lifetime of the process.
type AIHandler struct {
	Assistant Assistant // nil when GROQ_API_KEY is unset

	mu      sync.Mutex
	history []ai.ChatMessage
}

// historyCap bounds the stored transcript; the client trims to the last
// ten turns before calling upstream anyway.
const historyCap = 40

func (h *AIHandler) assistant() (Assistant, error) {
	if h.Assistant == nil {
		return nil, appErrors.NewConfigError("GROQ_API_KEY", "set it in .env to enable AI features")
	}
	return h.Assistant, nil
}

// Chat handles POST /api/ai/chat. Slash commands are dispatched without
// touching the conversation history; plain messages extend it.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	assistant, err := h.assistant()
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Message string         `json:"message"`
		Context ai.ChatContext `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}
	if body.Message == "" {
		writeError(w, appErrors.NewValidationError("message is required"))
		return
	}

	cmd, arg := ai.ParseCommand(body.Message)
	if cmd != ai.CmdNone {
		reply, err := assistant.RunCommand(r.Context(), cmd, arg, body.Context)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"response": reply, "command": cmd.String()})
		return
	}

	h.mu.Lock()
	history := append([]ai.ChatMessage(nil), h.history...)
	h.mu.Unlock()

	reply, err := assistant.Chat(r.Context(), body.Message, body.Context, history)
	if err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	h.history = append(h.history,
		ai.ChatMessage{Role: "user", Content: body.Message},
		ai.ChatMessage{Role: "assistant", Content: reply},
	)
	if len(h.history) > historyCap {
		h.history = h.history[len(h.history)-historyCap:]
	}
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"response": reply})
}

// GenerateEmail handles POST /api/ai/generate-email.
func (h *AIHandler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	assistant, err := h.assistant()
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		CompanyName     string `json:"company_name"`
		CompanyDetails  string `json:"company_details"`
		Product         string `json:"product"`
		OurCompany      string `json:"our_company"`
		AudienceType    string `json:"audience_type"`
		Goal            string `json:"goal"`
		Style           string `json:"style"`
		SubjectTemplate string `json:"subject_template"`
		MessageTemplate string `json:"message_template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}
	if body.CompanyName == "" {
		writeError(w, appErrors.NewValidationError("company_name is required"))
		return
	}

	result, err := assistant.GenerateEmail(r.Context(), ai.EmailRequest{
		CompanyName:     body.CompanyName,
		CompanyDetails:  body.CompanyDetails,
		Product:         body.Product,
		OurCompany:      body.OurCompany,
		Audience:        body.AudienceType,
		Goal:            body.Goal,
		Style:           ai.ParseStyle(body.Style),
		SubjectTemplate: body.SubjectTemplate,
		MessageTemplate: body.MessageTemplate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GeneratePersonalizedEmail handles POST /api/ai/generate-personalized-email,
// drafting from a CSV row plus the parsed campaign document.
func (h *AIHandler) GeneratePersonalizedEmail(w http.ResponseWriter, r *http.Request) {
	assistant, err := h.assistant()
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Row           map[string]string `json:"row"`
		CampaignInfo  ai.CampaignInfo   `json:"campaign_info"`
		EmailTemplate string            `json:"email_template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}
	if len(body.Row) == 0 {
		writeError(w, appErrors.NewValidationError("row is required"))
		return
	}

	result, err := assistant.GeneratePersonalizedEmail(r.Context(), ai.RowFromMap(body.Row), body.CampaignInfo, body.EmailTemplate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// EnhanceEmail handles POST /api/ai/enhance-email.
func (h *AIHandler) EnhanceEmail(w http.ResponseWriter, r *http.Request) {
	assistant, err := h.assistant()
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		EmailBody    string `json:"email_body"`
		CompanyName  string `json:"company_name"`
		AudienceType string `json:"audience_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}
	if body.EmailBody == "" {
		writeError(w, appErrors.NewValidationError("email_body is required"))
		return
	}

	result, err := assistant.EnhanceEmail(r.Context(), body.EmailBody, body.CompanyName, body.AudienceType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AnalyzeCompany handles POST /api/ai/analyze-company.
func (h *AIHandler) AnalyzeCompany(w http.ResponseWriter, r *http.Request) {
	assistant, err := h.assistant()
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		CompanyName    string `json:"company_name"`
		CompanyDetails string `json:"company_details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}
	if body.CompanyName == "" {
		writeError(w, appErrors.NewValidationError("company_name is required"))
		return
	}

	analysis, err := assistant.AnalyzeCompany(r.Context(), body.CompanyName, body.CompanyDetails)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// SuggestImprovements handles POST /api/ai/suggest-improvements.
func (h *AIHandler) SuggestImprovements(w http.ResponseWriter, r *http.Request) {
	assistant, err := h.assistant()
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidationError("invalid body"))
		return
	}
	if body.Body == "" {
		writeError(w, appErrors.NewValidationError("body is required"))
		return
	}

	suggestions, err := assistant.SuggestImprovements(r.Context(), body.Subject, body.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
