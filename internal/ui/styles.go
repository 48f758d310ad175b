package ui

import (
	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green  - live data, confirmed txs
	ColorWarning   = lipgloss.Color("#FFB800") // yellow - simulated data, warnings
	ColorError     = lipgloss.Color("#FF4444") // red    - errors, wrong network
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan   - addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white  - token amounts
	ColorMeta      = lipgloss.Color("#555555") // gray   - labels, timestamps
	ColorBorder    = lipgloss.Color("#1E3A5F") // blue   - boxes
	ColorChain     = lipgloss.Color("#9B5DE5") // purple - network names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink   - headers, selection
	ColorStar      = lipgloss.Color("#FFD60A") // gold   - star levels
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)
	StyleStar    = lipgloss.NewStyle().Foreground(ColorStar)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorChain).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the heroicdash banner.
func Banner() string {
	art := `
  ╦ ╦╔═╗╦═╗╔═╗╦╔═╗  ╔╦╗╔═╗╔═╗╦ ╦
  ╠═╣║╣ ╠╦╝║ ║║║    ║║╠═╣╚═╗╠═╣
  ╩ ╩╚═╝╩╚═╚═╝╩╚═╝  ═╩╝╩ ╩╚═╝╩ ╩`

	tagline := StyleMeta.Render("  Staking & referral dashboard  ✦  Polygon")
	return StyleChain.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleAddress.Render("ℹ " + msg) }

// Hint formats a suggestion.
func Hint(msg string) string { return StyleMeta.Render("💡 " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// ChainName formats a network name.
func ChainName(c string) string { return StyleChain.Render(c) }

// Stars formats a star string.
func Stars(s string) string { return StyleStar.Render(s) }

// Amount formats a token amount with its symbol.
func Amount(v, symbol string) string {
	if symbol == "" {
		return Val(v)
	}
	return Val(v) + " " + Meta(symbol)
}

// Source renders a provenance tag. Live data has no tag.
func Source(s contract.Source) string {
	switch s {
	case contract.SourceMock:
		return StyleWarning.Render("(demo)")
	case contract.SourcePartial:
		return StyleWarning.Render("(partly demo)")
	case contract.SourceDerived:
		return StyleMeta.Render("(derived)")
	}
	return ""
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
