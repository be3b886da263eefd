package main

import (
	"bufio"
	"fmt"
	"strings"
)

// prompt asks yes/no questions on the terminal. Anything but y/yes is no.
type prompt struct {
	term terminal
	in   *bufio.Reader
}

func newPrompt(term terminal) *prompt {
	return &prompt{term: term, in: bufio.NewReader(term.in)}
}

func (p *prompt) Confirm(question string) bool {
	fmt.Fprintf(p.term.err, "%s [y/N] ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.term.err)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
