package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm asks a yes/no question. Returns true for yes.
func (p *Prompter) Confirm(prompt string) bool {
	return p.ask(StyleWarning.Render(prompt))
}

// ConfirmDanger is like Confirm but styled for admin and irreversible actions.
func (p *Prompter) ConfirmDanger(prompt string) bool {
	return p.ask(StyleError.Render("⚠ " + prompt))
}

func (p *Prompter) ask(styled string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", styled)
	line, _ := p.in.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
