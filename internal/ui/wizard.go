package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard. Empty strings
// mean "keep the current value".
type WizardResult struct {
	NetworkMode     string
	Provider        string
	RPCURL          string
	ContractAddress string
	Canceled        bool
}

type wizardStep int

const (
	stepMode wizardStep = iota
	stepProvider
	stepRPC
	stepContract
	stepDone
)

type wizardModel struct {
	step      wizardStep
	result    WizardResult
	cursor    int
	choices   []string
	input     string
	inputMode bool
}

var (
	modes     = []string{"mainnet", "testnet"}
	providers = []string{"keyed", "rpc", "none"}
)

func initialWizard() wizardModel {
	return wizardModel{step: stepMode, choices: modes}
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.result.Canceled = true
		return m, tea.Quit

	case "enter":
		if m.inputMode {
			m.applyInput()
		} else {
			m.applyChoice()
		}
		m.advance()

	default:
		if m.inputMode {
			m.edit(key)
		} else {
			m.move(key.String())
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) edit(key tea.KeyMsg) {
	switch key.Type {
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(key.Runes)
	}
}

func (m *wizardModel) move(k string) {
	switch k {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	}
}

func (m *wizardModel) advance() {
	m.step++
	m.cursor = 0
	m.input = ""
	switch m.step {
	case stepProvider:
		m.choices = providers
	case stepRPC, stepContract:
		m.choices = nil
		m.inputMode = true
	default:
		m.inputMode = false
	}
	// Without a wallet there is nothing to dial or bind.
	if m.step == stepRPC && m.result.Provider == "none" {
		m.step = stepDone
	}
}

func (m *wizardModel) applyChoice() {
	if m.cursor >= len(m.choices) {
		return
	}
	switch m.step {
	case stepMode:
		m.result.NetworkMode = m.choices[m.cursor]
	case stepProvider:
		m.result.Provider = m.choices[m.cursor]
	}
}

func (m *wizardModel) applyInput() {
	// Strip whitespace and accidental brackets from paste.
	v := strings.Trim(strings.TrimSpace(m.input), "[]")
	switch m.step {
	case stepRPC:
		m.result.RPCURL = v
	case stepContract:
		m.result.ContractAddress = v
	}
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepMode:
		s = renderMenu("Target network:", m.choices, m.cursor)
	case stepProvider:
		s = renderMenu("Wallet provider:", m.choices, m.cursor)
	case stepRPC:
		s = renderInput("RPC endpoint (optional)", "Enter a node URL, or press Enter for the network default:", m.input)
	case stepContract:
		s = renderInput("Contract address (optional)", "Enter the staking contract address, or press Enter for the default:", m.input)
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc cancel")
	return s
}

func renderInput(title, prompt, input string) string {
	s := StyleTitle.Render(title) + "\n\n"
	s += StyleMeta.Render(prompt) + "\n"
	s += "> " + StyleAddress.Render(input) + "█\n"
	return s
}

// RunWizard launches the interactive setup wizard and returns the answers.
func RunWizard(opts ...tea.ProgramOption) (*WizardResult, error) {
	p := tea.NewProgram(initialWizard(), opts...)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard: %w", err)
	}
	result := final.(wizardModel).result
	return &result, nil
}
