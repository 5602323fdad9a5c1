// internal/ai/prompts.go
package ai

import (
	"fmt"
	"strings"
)

const assistantSystemMessage = `You are an AI assistant helping with cold email campaigns. You specialize in:
- Writing compelling, personalized cold emails
- Improving subject lines and email copy
- Analyzing companies for outreach personalization
- Providing email campaign strategy advice

Be concise, actionable, and professional.`

func buildSystemMessage(chatCtx ChatContext) string {
	msg := assistantSystemMessage
	if chatCtx.Page == "campaign" {
		msg += "\n\nThe user is currently building an email campaign."
	}
	if chatCtx.CompanyName != "" {
		msg += "\n\nCurrent target company: " + chatCtx.CompanyName
	}
	if chatCtx.AudienceType != "" {
		msg += "\n\nTarget audience: " + chatCtx.AudienceType
	}
	return msg
}

func buildWhyPrompt(req EmailRequest) string {
	return fmt.Sprintf(`Write 2-3 SHORT sentences (max 50 words) explaining why %s specifically would benefit from this product.

Company: %s
Company Details: %s

Product: %s
Campaign Goal: %s

Requirements:
- Max 50 words total
- Be SPECIFIC to %s's actual business and focus
- No generic statements, no fluff or buzzwords
- Direct and confident

Return ONLY the personalized WHY statement, nothing else.`,
		req.CompanyName, req.CompanyName, truncate(req.CompanyDetails, 500),
		req.Product, req.Goal, req.CompanyName)
}

func buildStandardEmailPrompt(req EmailRequest, why string) string {
	return fmt.Sprintf(`Write a compelling cold email for %s to %s.

STRUCTURE THE EMAIL WITH THESE SECTIONS:

1. Opening greeting to %s

2. WHY %s NEEDS THIS:
%s

3. PRODUCT DETAILS:
%s

4. ABOUT US:
%s

5. Clear call-to-action

Requirements:
- 100-150 words total
- Professional yet warm tone
- Specific to %s (not generic)
- Strong value proposition

Return ONLY the email body.`,
		req.Audience, req.CompanyName, req.CompanyName, req.CompanyName,
		why, req.Product, req.OurCompany, req.CompanyName)
}

func buildConcisePitchPrompt(req EmailRequest) string {
	return fmt.Sprintf(`Write a concise, punchy cold email to %s in this EXACT structure:

1. Problem statement (1-2 sentences: why existing solutions failed)
2. Our solution (2-3 sentences: how it changes the economics)
3. Traction (2-3 short sentences: live, customers, early metrics)
4. Urgency (1 sentence: timing/window)
5. CTA: "Worth a call?"

CONTEXT:
- Target company: %s
- Their context: %s
- Product: %s
- Our company: %s

STYLE REQUIREMENTS:
- Short, punchy sentences. No fluff.
- Active voice. State facts.
- Max 150 words total
- No buzzwords or jargon

Return ONLY the email body.`,
		req.CompanyName, req.CompanyName, truncate(req.CompanyDetails, 300),
		req.Product, req.OurCompany)
}

func buildEnhancePrompt(body, company, audience string) string {
	return fmt.Sprintf(`You are an expert cold email writer. Improve the following email for a %s audience targeting %s.

Requirements:
- Keep it concise (100-150 words)
- Personalize for %s
- Make the value proposition crystal clear
- Include a clear call-to-action
- Avoid buzzwords and fluff

Original email:
%s

Return ONLY the improved email body, no explanations.`, audience, company, company, body)
}

func buildSubjectPrompt(company, audience, bodyPreview string) string {
	return fmt.Sprintf(`Generate a short, compelling email subject line (5-8 words) for a cold email to %s (%s).

Email preview:
%s

Requirements:
- Personalized to %s
- Creates curiosity
- Professional, not spammy
- No emojis or ALL CAPS

Return ONLY the subject line, no quotes or explanations.`,
		company, audience, truncate(bodyPreview, 200), company)
}

func buildAnalyzePrompt(company, details string) string {
	return fmt.Sprintf(`Analyze this company for cold email personalization:

Company: %s
Details: %s

Provide:
1. Key focus areas (3-4 topics they care about)
2. Recommended email tone (formal/friendly/innovative)
3. Potential talking points for outreach

Format as JSON:
{
    "focus_areas": ["area1", "area2", "area3"],
    "tone": "formal/friendly/innovative",
    "talking_points": ["point1", "point2", "point3"]
}

Return ONLY valid JSON.`, company, truncate(details, 500))
}

func buildImprovementsPrompt(subject, body string) string {
	return fmt.Sprintf(`Review this cold email and provide 3-5 specific, actionable improvements:

Subject: %s

Body:
%s

Focus on:
- Personalization opportunities
- Value proposition clarity
- Call-to-action strength
- Length and readability

Return as a numbered list.`, subject, body)
}

func buildPersonalizedWhyPrompt(row RecipientRow, info CampaignInfo) string {
	return fmt.Sprintf(`Generate a SHORT personalized explanation (2-3 sentences, max 50 words) of why %s specifically would benefit from %s.

YOUR COMPANY & PRODUCT:
%s - %s
Product: %s
Value Props: %s
Metrics: %s
Goal: %s

TARGET COMPANY:
Company: %s
Description: %s
Industry: %s
Services/Products: %s

Requirements:
- Only 2-3 sentences (max 50 words)
- Be SPECIFIC to %s's industry and business
- Explain how %s solves THEIR specific pain points
- Direct, confident, no fluff

Return ONLY the personalized WHY statement, nothing else.`,
		row.Company, info.Product,
		info.Company, info.Description, info.Product, info.ValueProps, info.Metrics, info.Goal,
		row.Company, truncate(row.Description, 500), row.Industry, row.Services,
		row.Company, info.Product)
}

func buildPersonalizedEmailPrompt(row RecipientRow, info CampaignInfo) string {
	return fmt.Sprintf(`Write a highly personalized cold email based on detailed company research.

YOUR COMPANY:
%s
Product: %s
Value Props: %s
Metrics: %s
Goal: %s
Description: %s

TARGET COMPANY:
Company: %s
Description: %s
Industry: %s
Services/Products: %s

Requirements:
1. Connect YOUR product's value props to THEIR specific business context
2. Reference their industry and services naturally
3. Make it feel researched, not templated
4. Keep it concise (100-150 words)
5. Include a clear CTA related to your goal: %s

Return ONLY the email body, no subject line.`,
		info.Company, info.Product, info.ValueProps, info.Metrics, info.Goal, info.Description,
		row.Company, truncate(row.Description, 500), row.Industry, row.Services,
		info.Goal)
}

func buildDocumentPrompt(text string) string {
	return fmt.Sprintf(`Analyze this campaign/pitch document and extract key information.

Document Text:
%s

Extract and return ONLY a JSON object with these fields:
1. "company": Company name
2. "product": Product or service name and brief description
3. "value_props": Main value propositions (1-3 key benefits)
4. "metrics": Key achievements, metrics, or traction
5. "goal": Campaign goal (funding round, sales, partnership, etc.)
6. "description": 2-3 sentence company description

Return ONLY valid JSON, no other text.`, truncate(text, 4000))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
