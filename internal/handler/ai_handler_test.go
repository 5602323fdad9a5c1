package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mailpilot/mailpilot-backend/internal/ai"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/handler"
)

// --- Mock Assistant ---

type MockAssistant struct {
	chatReply   string
	chatErr     error
	lastHistory []ai.ChatMessage
	commands    []ai.Command
}

func (m *MockAssistant) Chat(ctx context.Context, message string, chatCtx ai.ChatContext, history []ai.ChatMessage) (string, error) {
	m.lastHistory = append([]ai.ChatMessage(nil), history...)
	return m.chatReply, m.chatErr
}

func (m *MockAssistant) RunCommand(ctx context.Context, cmd ai.Command, arg string, chatCtx ai.ChatContext) (string, error) {
	m.commands = append(m.commands, cmd)
	return "command output for " + arg, nil
}

func (m *MockAssistant) GenerateEmail(ctx context.Context, req ai.EmailRequest) (ai.EmailResult, error) {
	return ai.EmailResult{
		Subject: "Intro for " + req.CompanyName,
		Body:    "Dear " + req.CompanyName,
	}, nil
}

func (m *MockAssistant) GeneratePersonalizedEmail(ctx context.Context, row ai.RecipientRow, info ai.CampaignInfo, emailTemplate string) (ai.EmailResult, error) {
	return ai.EmailResult{Subject: info.Company + " + " + row.Company, Body: "hello"}, nil
}

func (m *MockAssistant) EnhanceEmail(ctx context.Context, body, company, audience string) (ai.EmailResult, error) {
	return ai.EmailResult{Body: strings.ToUpper(body)}, nil
}

func (m *MockAssistant) AnalyzeCompany(ctx context.Context, company, details string) (ai.CompanyAnalysis, error) {
	return ai.CompanyAnalysis{Tone: "professional"}, nil
}

func (m *MockAssistant) SuggestImprovements(ctx context.Context, subject, body string) ([]string, error) {
	return []string{"shorten the opener", "add a call to action"}, nil
}

func (m *MockAssistant) ParseCampaignDocument(ctx context.Context, text string) (ai.CampaignInfo, error) {
	return ai.CampaignInfo{Company: "Mailpilot"}, nil
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestChatWithoutAssistantReportsSetupRequired(t *testing.T) {
	h := &handler.AIHandler{}

	w := postJSON(t, h.Chat, map[string]any{"message": "hi"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var res map[string]any
	json.NewDecoder(w.Body).Decode(&res)
	if res["setup_required"] != true {
		t.Errorf("expected setup_required, got %v", res)
	}
}

func TestChatKeepsServerSideHistory(t *testing.T) {
	mock := &MockAssistant{chatReply: "sure"}
	h := &handler.AIHandler{Assistant: mock}

	if w := postJSON(t, h.Chat, map[string]any{"message": "first"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := postJSON(t, h.Chat, map[string]any{"message": "second"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// The second call should see the first exchange as history.
	if len(mock.lastHistory) != 2 {
		t.Fatalf("expected 2 history messages, got %d", len(mock.lastHistory))
	}
	if mock.lastHistory[0].Content != "first" || mock.lastHistory[1].Content != "sure" {
		t.Errorf("unexpected history: %+v", mock.lastHistory)
	}
}

func TestChatDispatchesSlashCommands(t *testing.T) {
	mock := &MockAssistant{}
	h := &handler.AIHandler{Assistant: mock}

	w := postJSON(t, h.Chat, map[string]any{"message": "/draft a pitch for Acme"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(mock.commands) != 1 || mock.commands[0] != ai.CmdDraft {
		t.Errorf("expected draft command dispatch, got %v", mock.commands)
	}
	// Commands must not pollute the conversation history.
	if len(mock.lastHistory) != 0 {
		t.Errorf("command should not be recorded as history")
	}
}

func TestChatRequiresMessage(t *testing.T) {
	h := &handler.AIHandler{Assistant: &MockAssistant{}}
	if w := postJSON(t, h.Chat, map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty message, got %d", w.Code)
	}
}

func TestChatUpstreamFailureIsBadGateway(t *testing.T) {
	mock := &MockAssistant{chatErr: appErrors.NewUpstreamError("groq", errors.New("rate limited"))}
	h := &handler.AIHandler{Assistant: mock}

	if w := postJSON(t, h.Chat, map[string]any{"message": "hi"}); w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestGenerateEmail(t *testing.T) {
	h := &handler.AIHandler{Assistant: &MockAssistant{}}

	w := postJSON(t, h.GenerateEmail, map[string]any{
		"company_name": "Acme",
		"style":        "standard",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res ai.EmailResult
	json.NewDecoder(w.Body).Decode(&res)
	if res.Subject != "Intro for Acme" {
		t.Errorf("unexpected subject: %q", res.Subject)
	}
}

func TestGenerateEmailRequiresCompanyName(t *testing.T) {
	h := &handler.AIHandler{Assistant: &MockAssistant{}}
	if w := postJSON(t, h.GenerateEmail, map[string]any{"style": "standard"}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSuggestImprovements(t *testing.T) {
	h := &handler.AIHandler{Assistant: &MockAssistant{}}

	w := postJSON(t, h.SuggestImprovements, map[string]any{"subject": "s", "body": "b"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res struct {
		Suggestions []string `json:"suggestions"`
	}
	json.NewDecoder(w.Body).Decode(&res)
	if len(res.Suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %v", res.Suggestions)
	}
}
