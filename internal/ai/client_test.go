package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mailpilot/mailpilot-backend/internal/config"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

// newTestClient points a Client at a stub completions endpoint.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &Client{
		apiKey:      "test-key",
		model:       "test-model",
		baseURL:     ts.URL,
		temperature: 0.7,
		maxTokens:   1024,
		httpClient:  ts.Client(),
	}
}

// completionHandler answers every request with the given content.
func completionHandler(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		})
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.Config{GroqAPIKey: ""})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	var cerr *appErrors.ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("expected ConfigError, got %T: %v", err, err)
	}
}

func TestChatReturnsContent(t *testing.T) {
	c := newTestClient(t, completionHandler("Hello there"))

	resp, err := c.Chat(context.Background(), "hi", ChatContext{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "Hello there" {
		t.Errorf("got %q", resp)
	}
}

func TestChatSendsOnlyLastTenHistoryTurns(t *testing.T) {
	var gotMessages int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotMessages = len(req.Messages)
		completionHandler("ok")(w, r)
	})

	history := make([]ChatMessage, 20)
	for i := range history {
		history[i] = ChatMessage{Role: "user", Content: "x"}
	}
	if _, err := c.Chat(context.Background(), "hi", ChatContext{}, history); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// system + 10 history + user
	if gotMessages != 12 {
		t.Errorf("expected 12 messages, got %d", gotMessages)
	}
}

func TestCompleteUpstreamErrorOnBadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{}`))
	})

	_, err := c.Chat(context.Background(), "hi", ChatContext{}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var uerr *appErrors.UpstreamError
	if !errors.As(err, &uerr) {
		t.Errorf("expected UpstreamError, got %T: %v", err, err)
	}
}

func TestCompleteUpstreamErrorOnAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid key", "type": "auth"},
		})
	})

	_, err := c.Chat(context.Background(), "hi", ChatContext{}, nil)
	var uerr *appErrors.UpstreamError
	if !errors.As(err, &uerr) {
		t.Errorf("expected UpstreamError, got %T: %v", err, err)
	}
}

func TestGenerateEmailCustomWhyRendersTemplate(t *testing.T) {
	c := newTestClient(t, completionHandler("They invest in AI tooling."))

	result, err := c.GenerateEmail(context.Background(), EmailRequest{
		CompanyName:     "Acme",
		CompanyDetails:  "AI-focused VC",
		Product:         "Legal research copilot",
		Style:           StyleCustomWhy,
		SubjectTemplate: "Intro for {{company}}",
		MessageTemplate: "Dear {{company}}, {{why}} Regards",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Body != "Dear Acme, They invest in AI tooling. Regards" {
		t.Errorf("unexpected body: %q", result.Body)
	}
	if result.Subject != "Intro for Acme" {
		t.Errorf("unexpected subject: %q", result.Subject)
	}
	if result.Why != "They invest in AI tooling." {
		t.Errorf("unexpected why: %q", result.Why)
	}
}

func TestGenerateEmailRepeatedWhyGetsSameFragment(t *testing.T) {
	c := newTestClient(t, completionHandler("F"))

	result, err := c.GenerateEmail(context.Background(), EmailRequest{
		CompanyName:     "Acme",
		Style:           StyleCustomWhy,
		SubjectTemplate: "s",
		MessageTemplate: "{{why}} / {{why}}",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Body != "F / F" {
		t.Errorf("both occurrences should receive identical text, got %q", result.Body)
	}
}

func TestAnalyzeCompanyParsesJSON(t *testing.T) {
	c := newTestClient(t, completionHandler(`{"focus_areas":["ai"],"tone":"formal","talking_points":["synergy"]}`))

	analysis, err := c.AnalyzeCompany(context.Background(), "Acme", "details")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Tone != "formal" || len(analysis.FocusAreas) != 1 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}
}

func TestAnalyzeCompanyFallbackOnBadJSON(t *testing.T) {
	c := newTestClient(t, completionHandler("not json at all"))

	analysis, err := c.AnalyzeCompany(context.Background(), "Acme", "details")
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if len(analysis.FocusAreas) == 0 || analysis.Tone == "" {
		t.Errorf("expected static fallback, got %+v", analysis)
	}
}

func TestParseCampaignDocumentRejectsShortText(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		completionHandler("{}")(w, r)
	})

	_, err := c.ParseCampaignDocument(context.Background(), "too short")
	var verr *appErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if calls != 0 {
		t.Errorf("no API call should be made for invalid input, got %d", calls)
	}
}

func TestParseCampaignDocumentBackfillsFields(t *testing.T) {
	c := newTestClient(t, completionHandler(`{"company":"Acme"}`))

	text := make([]byte, 100)
	for i := range text {
		text[i] = 'a'
	}
	info, err := c.ParseCampaignDocument(context.Background(), string(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Company != "Acme" || info.Goal != "Not specified" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestSuggestImprovementsSplitsLines(t *testing.T) {
	c := newTestClient(t, completionHandler("1. Shorten the opener\n\n2. Add a CTA"))

	suggestions, err := c.SuggestImprovements(context.Background(), "subj", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %v", suggestions)
	}
}

func TestGeneratePersonalizedEmailUsesTemplate(t *testing.T) {
	c := newTestClient(t, completionHandler("Because reasons."))

	row := RowFromMap(map[string]string{
		"Company":  "Acme",
		"Details":  "AI-focused VC",
		"Industry": "Venture Capital",
	})
	result, err := c.GeneratePersonalizedEmail(context.Background(), row,
		CampaignInfo{Company: "Mailpilot", Product: "Copilot"},
		"Dear {{company}}, {{why}} Regards")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Body != "Dear Acme, Because reasons. Regards" {
		t.Errorf("unexpected body: %q", result.Body)
	}
}
