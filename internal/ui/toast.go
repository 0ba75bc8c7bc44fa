package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Toaster prints notifications as single styled lines.
type Toaster struct {
	mu  sync.Mutex
	out io.Writer
}

func NewToaster(out io.Writer) *Toaster {
	return &Toaster{out: out}
}

func (t *Toaster) Success(msg string) { t.print(fg(colorSuccess).Render("✓ " + msg)) }
func (t *Toaster) Error(msg string)   { t.print(fg(colorDanger).Render("✗ " + msg)) }

func (t *Toaster) print(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, line)
}

// Prompter reads answers from the terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm asks a yes/no question; anything but y or yes is a no.
func (p *Prompter) Confirm(prompt string) bool {
	answer, err := p.Ask(prompt + " [y/N]")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// Ask prints label and returns the trimmed line typed by the user.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
