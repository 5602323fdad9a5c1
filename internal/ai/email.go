// internal/ai/email.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/template"
)

// EmailStyle selects how much of the email the model writes.
type EmailStyle string

const (
	// StyleStandard generates a complete subject+body from the company
	// details and product description.
	StyleStandard EmailStyle = "standard"
	// StyleCustomWhy only generates the short "why" fragment and
	// substitutes it into the user's own template.
	StyleCustomWhy EmailStyle = "custom_why"
	// StyleConcisePitch generates a short punchy pitch email.
	StyleConcisePitch EmailStyle = "concise_pitch"
)

// ParseStyle maps the loose style strings the UI sends to an EmailStyle.
func ParseStyle(s string) EmailStyle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "custom_why", "custom":
		return StyleCustomWhy
	case "concise_pitch", "concise":
		return StyleConcisePitch
	default:
		return StyleStandard
	}
}

// EmailRequest carries everything the generator needs for one recipient.
type EmailRequest struct {
	CompanyName     string
	CompanyDetails  string
	Product         string
	OurCompany      string
	Audience        string
	Goal            string
	Style           EmailStyle
	SubjectTemplate string
	MessageTemplate string
}

// EmailResult is a generated draft. Why holds the raw personalization
// fragment when one was produced.
type EmailResult struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Why     string `json:"why_analysis,omitempty"`
}

// GenerateEmail produces a draft for one recipient according to the
// requested style.
func (c *Client) GenerateEmail(ctx context.Context, req EmailRequest) (EmailResult, error) {
	if req.CompanyName == "" {
		return EmailResult{}, appErrors.NewValidationError("company name is required")
	}
	if req.Audience == "" {
		req.Audience = "VCs"
	}

	switch req.Style {
	case StyleCustomWhy:
		why, err := c.generateWhy(ctx, req)
		if err != nil {
			return EmailResult{}, err
		}
		body := why
		if req.MessageTemplate != "" {
			body = template.Render(req.MessageTemplate, map[string]string{
				template.PlaceholderCompany:    req.CompanyName,
				template.PlaceholderWhy:        why,
				template.PlaceholderProduct:    req.Product,
				template.PlaceholderOurCompany: req.OurCompany,
			})
		}
		return EmailResult{
			Subject: c.subjectFor(ctx, req, body),
			Body:    body,
			Why:     why,
		}, nil

	case StyleConcisePitch:
		body, err := c.complete(ctx, chatRequest{
			Messages: []ChatMessage{
				{Role: "system", Content: "You are an expert at writing high-converting cold emails."},
				{Role: "user", Content: buildConcisePitchPrompt(req)},
			},
			Temperature: c.temperature,
			MaxTokens:   500,
		})
		if err != nil {
			return EmailResult{}, err
		}
		return EmailResult{Subject: c.subjectFor(ctx, req, body), Body: body}, nil

	default:
		why, err := c.generateWhy(ctx, req)
		if err != nil {
			return EmailResult{}, err
		}
		body, err := c.complete(ctx, chatRequest{
			Messages: []ChatMessage{
				{Role: "system", Content: fmt.Sprintf("You are an expert at writing high-converting cold emails for %s.", req.Audience)},
				{Role: "user", Content: buildStandardEmailPrompt(req, why)},
			},
			Temperature: c.temperature,
			MaxTokens:   500,
		})
		if err != nil {
			return EmailResult{}, err
		}
		return EmailResult{Subject: c.subjectFor(ctx, req, body), Body: body, Why: why}, nil
	}
}

func (c *Client) generateWhy(ctx context.Context, req EmailRequest) (string, error) {
	return c.complete(ctx, chatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: "You are an expert at analyzing companies and identifying product-market fit."},
			{Role: "user", Content: buildWhyPrompt(req)},
		},
		Temperature: 0.6,
		MaxTokens:   200,
	})
}

// subjectFor renders the subject template when one was supplied, otherwise
// asks the model for a subject line. A failed subject call falls back to a
// static subject rather than discarding the already-generated body.
func (c *Client) subjectFor(ctx context.Context, req EmailRequest, body string) string {
	if req.SubjectTemplate != "" {
		return template.Render(req.SubjectTemplate, map[string]string{
			template.PlaceholderCompany: req.CompanyName,
		})
	}
	subject, err := c.GenerateSubjectLine(ctx, req.CompanyName, req.Audience, body)
	if err != nil {
		return "Partnership Opportunity - " + req.CompanyName
	}
	return subject
}

// GenerateSubjectLine asks the model for a short subject line.
func (c *Client) GenerateSubjectLine(ctx context.Context, company, audience, bodyPreview string) (string, error) {
	subject, err := c.complete(ctx, chatRequest{
		Messages:    []ChatMessage{{Role: "user", Content: buildSubjectPrompt(company, audience, bodyPreview)}},
		Temperature: 0.8,
		MaxTokens:   50,
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(subject, `"'`), nil
}

// EnhanceEmail rewrites an existing draft body and pairs it with a fresh
// subject line.
func (c *Client) EnhanceEmail(ctx context.Context, body, company, audience string) (EmailResult, error) {
	if body == "" {
		return EmailResult{}, appErrors.NewValidationError("no email body provided")
	}
	if audience == "" {
		audience = "VCs"
	}

	improved, err := c.complete(ctx, chatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: "You are a cold email expert focused on high-converting, personalized outreach."},
			{Role: "user", Content: buildEnhancePrompt(body, company, audience)},
		},
		Temperature: c.temperature,
		MaxTokens:   500,
	})
	if err != nil {
		return EmailResult{}, err
	}

	subject, err := c.GenerateSubjectLine(ctx, company, audience, improved)
	if err != nil {
		subject = "Partnership Opportunity with " + company
	}
	return EmailResult{Subject: subject, Body: improved}, nil
}

// CompanyAnalysis is the structured output of AnalyzeCompany.
type CompanyAnalysis struct {
	FocusAreas    []string `json:"focus_areas"`
	Tone          string   `json:"tone"`
	TalkingPoints []string `json:"talking_points"`
}

// AnalyzeCompany asks the model for personalization insights. When the model
// returns unparseable JSON a static fallback is used so the UI always gets
// something workable.
func (c *Client) AnalyzeCompany(ctx context.Context, company, details string) (CompanyAnalysis, error) {
	raw, err := c.complete(ctx, chatRequest{
		Messages:       []ChatMessage{{Role: "user", Content: buildAnalyzePrompt(company, details)}},
		Temperature:    0.5,
		MaxTokens:      300,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return CompanyAnalysis{}, err
	}

	var analysis CompanyAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &analysis); err != nil {
		return CompanyAnalysis{
			FocusAreas: []string{"innovation", "growth", "partnership"},
			Tone:       "professional",
			TalkingPoints: []string{
				"Potential synergy with " + company,
				"Innovative solution for their industry",
				"Proven track record and results",
			},
		}, nil
	}
	return analysis, nil
}

// SuggestImprovements returns 3-5 actionable suggestions for a draft.
func (c *Client) SuggestImprovements(ctx context.Context, subject, body string) ([]string, error) {
	raw, err := c.complete(ctx, chatRequest{
		Messages:    []ChatMessage{{Role: "user", Content: buildImprovementsPrompt(subject, body)}},
		Temperature: 0.6,
		MaxTokens:   400,
	})
	if err != nil {
		return nil, err
	}

	var suggestions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.ContainsFunc(line, isLetter) {
			suggestions = append(suggestions, line)
		}
	}
	return suggestions, nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
