package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/heroicdash/internal/session"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestFormatNotice(t *testing.T) {
	tests := []struct {
		name   string
		notice session.Notice
		want   string
	}{
		{
			"error",
			session.Notice{Kind: session.KindUserRejected, Level: session.LevelError, Title: "Connection Cancelled", Message: "You rejected the connection request."},
			"✗ Connection Cancelled: You rejected the connection request.",
		},
		{
			"warning",
			session.Notice{Kind: session.KindDataFallback, Level: session.LevelWarning, Title: "Warning", Message: "Failed to fetch user data. Using cached data."},
			"⚠ Warning: Failed to fetch user data. Using cached data.",
		},
		{
			"connected",
			session.Notice{Kind: session.KindConnected, Level: session.LevelInfo, Title: "Wallet Connected"},
			"✓ Wallet Connected",
		},
		{
			"info",
			session.Notice{Kind: session.KindAccountChanged, Level: session.LevelInfo, Title: "Account Changed", Message: "Switched to 0x7099...79C8"},
			"ℹ Account Changed: Switched to 0x7099...79C8",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ansi.Strip(FormatNotice(tt.notice)))
		})
	}
}

func TestNotifierWritesLines(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)
	n.Notify(session.Notice{Level: session.LevelInfo, Title: "One"})
	n.Notify(session.Notice{Level: session.LevelError, Title: "Two"})
	lines := strings.Split(strings.TrimSpace(ansi.Strip(buf.String())), "\n")
	assert.Equal(t, []string{"ℹ One", "✗ Two"}, lines)
}

func TestPrompter(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tt.in), &out)
		assert.Equal(t, tt.want, p.Confirm("Stake 100 USDT?"), "input %q", tt.in)
		assert.Contains(t, ansi.Strip(out.String()), "Stake 100 USDT? [y/N]:")
	}
}

func TestPrompterDanger(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("y\n"), &out)
	assert.True(t, p.ConfirmDanger("Pause the contract?"))
	assert.Contains(t, ansi.Strip(out.String()), "⚠ Pause the contract?")
}
