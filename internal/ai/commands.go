// internal/ai/commands.go
package ai

import (
	"context"
	"fmt"
	"strings"
)

// Command is a typed chat slash-command. String prefix matching happens once
// in ParseCommand; everything downstream switches on the variant.
type Command int

const (
	CmdNone Command = iota
	CmdHelp
	CmdDraft
	CmdImprove
	CmdAnalyze
	CmdSubject
)

const helpText = `Available commands:
/draft <product description> - draft a cold email for the current company
/improve <email body> - rewrite an email body for clarity and impact
/analyze - analyze the current target company for personalization
/subject <email body> - suggest a subject line
/help - show this message

Anything else is answered as a normal question.`

func (c Command) String() string {
	switch c {
	case CmdHelp:
		return "help"
	case CmdDraft:
		return "draft"
	case CmdImprove:
		return "improve"
	case CmdAnalyze:
		return "analyze"
	case CmdSubject:
		return "subject"
	default:
		return "none"
	}
}

// ParseCommand splits a chat message into a command and its argument.
// Messages that do not start with a known slash command are CmdNone.
func ParseCommand(message string) (Command, string) {
	trimmed := strings.TrimSpace(message)
	if !strings.HasPrefix(trimmed, "/") {
		return CmdNone, trimmed
	}

	word, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(word) {
	case "/help":
		return CmdHelp, arg
	case "/draft":
		return CmdDraft, arg
	case "/improve":
		return CmdImprove, arg
	case "/analyze":
		return CmdAnalyze, arg
	case "/subject":
		return CmdSubject, arg
	default:
		return CmdNone, trimmed
	}
}

// RunCommand executes one typed command against the assistant, formatting
// the result as chat text.
func (c *Client) RunCommand(ctx context.Context, cmd Command, arg string, chatCtx ChatContext) (string, error) {
	company := chatCtx.CompanyName
	if company == "" {
		company = "the target company"
	}

	switch cmd {
	case CmdHelp:
		return helpText, nil

	case CmdDraft:
		result, err := c.GenerateEmail(ctx, EmailRequest{
			CompanyName: company,
			Product:     arg,
			Audience:    chatCtx.AudienceType,
			Style:       StyleStandard,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Subject: %s\n\n%s", result.Subject, result.Body), nil

	case CmdImprove:
		result, err := c.EnhanceEmail(ctx, arg, company, chatCtx.AudienceType)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Subject: %s\n\n%s", result.Subject, result.Body), nil

	case CmdAnalyze:
		details := arg
		analysis, err := c.AnalyzeCompany(ctx, company, details)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Analysis of %s:\n", company)
		fmt.Fprintf(&sb, "Tone: %s\n", analysis.Tone)
		sb.WriteString("Focus areas:\n")
		for _, a := range analysis.FocusAreas {
			fmt.Fprintf(&sb, "- %s\n", a)
		}
		sb.WriteString("Talking points:\n")
		for _, p := range analysis.TalkingPoints {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
		return sb.String(), nil

	case CmdSubject:
		subject, err := c.GenerateSubjectLine(ctx, company, chatCtx.AudienceType, arg)
		if err != nil {
			return "", err
		}
		return "Suggested subject: " + subject, nil

	default:
		return c.Chat(ctx, arg, chatCtx, nil)
	}
}
