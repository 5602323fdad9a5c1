// internal/ai/personalize.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/template"
)

// CampaignInfo is the structured description of the sender's own campaign,
// either entered by the user or extracted from an uploaded pitch document.
type CampaignInfo struct {
	Company     string `json:"company"`
	Product     string `json:"product"`
	ValueProps  string `json:"value_props"`
	Metrics     string `json:"metrics"`
	Goal        string `json:"goal"`
	Description string `json:"description"`
}

// RecipientRow is the research data for one target company, picked out of a
// raw CSV row.
type RecipientRow struct {
	Company     string
	Description string
	Industry    string
	Services    string
	Size        string
}

// RowFromMap resolves the well-known research columns out of a raw CSV row,
// tolerating the column-name variants the exports use.
func RowFromMap(row map[string]string) RecipientRow {
	return RecipientRow{
		Company:     pick(row, "Company_Name", "Company Name", "Company", "company"),
		Description: pick(row, "Company_Description", "Company Description", "Details", "details", "Description"),
		Industry:    pick(row, "Industry", "industry"),
		Services:    pick(row, "Services/Products", "Services", "Products", "services"),
		Size:        pick(row, "Company_Size", "Company Size", "Size"),
	}
}

func pick(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// GeneratePersonalizedEmail builds a draft for one CSV row. When the
// template contains {{why}} only the short fragment is generated and
// substituted; otherwise the model writes the whole body.
func (c *Client) GeneratePersonalizedEmail(ctx context.Context, row RecipientRow, info CampaignInfo, emailTemplate string) (EmailResult, error) {
	if row.Company == "" {
		return EmailResult{}, appErrors.NewValidationError("csv row has no company name")
	}

	var body, why string
	if template.Has(emailTemplate, template.PlaceholderWhy) {
		fragment, err := c.complete(ctx, chatRequest{
			Messages: []ChatMessage{
				{Role: "system", Content: "You are an expert at writing hyper-personalized cold emails using company research data."},
				{Role: "user", Content: buildPersonalizedWhyPrompt(row, info)},
			},
			Temperature: c.temperature,
			MaxTokens:   200,
		})
		if err != nil {
			return EmailResult{}, err
		}
		why = fragment
		body = template.Render(emailTemplate, map[string]string{
			template.PlaceholderCompany:    row.Company,
			template.PlaceholderWhy:        fragment,
			template.PlaceholderProduct:    info.Product,
			template.PlaceholderOurCompany: info.Company,
			"value_props":                  info.ValueProps,
			"metrics":                      info.Metrics,
		})
	} else {
		full, err := c.complete(ctx, chatRequest{
			Messages: []ChatMessage{
				{Role: "system", Content: "You are an expert at writing hyper-personalized cold emails using company research data."},
				{Role: "user", Content: buildPersonalizedEmailPrompt(row, info)},
			},
			Temperature: c.temperature,
			MaxTokens:   600,
		})
		if err != nil {
			return EmailResult{}, err
		}
		body = full
	}

	subject, err := c.GenerateSubjectLine(ctx, row.Company, "prospects", body)
	if err != nil {
		subject = fmt.Sprintf("%s + %s", info.Company, row.Company)
	}

	return EmailResult{Subject: subject, Body: body, Why: why}, nil
}

// ParseCampaignDocument extracts structured campaign info from the plain
// text of an uploaded pitch document. Fields the model omits are backfilled
// with "Not specified" so the UI never renders empty slots.
func (c *Client) ParseCampaignDocument(ctx context.Context, text string) (CampaignInfo, error) {
	if len(text) < 50 {
		return CampaignInfo{}, appErrors.NewValidationError("document appears to be empty or too short")
	}

	raw, err := c.complete(ctx, chatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: "You are a document analysis expert. Extract structured data from campaign documents."},
			{Role: "user", Content: buildDocumentPrompt(text)},
		},
		Temperature:    0.3,
		MaxTokens:      800,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return CampaignInfo{}, err
	}

	var info CampaignInfo
	if err := json.Unmarshal([]byte(stripFences(raw)), &info); err != nil {
		return CampaignInfo{}, appErrors.NewUpstreamError("groq", fmt.Errorf("parse document JSON: %w (raw: %.200s)", err, raw))
	}

	backfill(&info.Company)
	backfill(&info.Product)
	backfill(&info.ValueProps)
	backfill(&info.Metrics)
	backfill(&info.Goal)
	backfill(&info.Description)
	return info, nil
}

func backfill(field *string) {
	if *field == "" {
		*field = "Not specified"
	}
}
