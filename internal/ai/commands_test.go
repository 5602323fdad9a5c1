package ai

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in  string
		cmd Command
		arg string
	}{
		{"/draft AI legal copilot", CmdDraft, "AI legal copilot"},
		{"/improve Dear team, hello", CmdImprove, "Dear team, hello"},
		{"/analyze", CmdAnalyze, ""},
		{"/subject some body", CmdSubject, "some body"},
		{"/help", CmdHelp, ""},
		{"/unknown thing", CmdNone, "/unknown thing"},
		{"plain question", CmdNone, "plain question"},
		{"  /DRAFT pitch  ", CmdDraft, "pitch"},
	}

	for _, tt := range tests {
		cmd, arg := ParseCommand(tt.in)
		if cmd != tt.cmd || arg != tt.arg {
			t.Errorf("ParseCommand(%q) = (%v, %q), want (%v, %q)", tt.in, cmd, arg, tt.cmd, tt.arg)
		}
	}
}

func TestRunCommandHelp(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	out, err := c.RunCommand(context.Background(), CmdHelp, "", ChatContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "/draft") {
		t.Errorf("help text should list commands, got %q", out)
	}
	if calls != 0 {
		t.Errorf("/help must not hit the API, got %d calls", calls)
	}
}

func TestRunCommandSubject(t *testing.T) {
	c := newTestClient(t, completionHandler(`"Quick intro for Acme"`))

	out, err := c.RunCommand(context.Background(), CmdSubject, "body text", ChatContext{CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Suggested subject: Quick intro for Acme" {
		t.Errorf("got %q", out)
	}
}
