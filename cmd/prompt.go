package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// errNoInput is returned when a question is asked but input has ended.
var errNoInput = errors.New("no input")

// prompter asks questions over a line based terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// readLine returns the next line without its line ending.
func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errNoInput
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	return p.readLine()
}

// confirm asks for an explicit "yes".
func (p *prompter) confirm(question string) bool {
	answer, err := p.ask(question + " Type 'yes' to confirm: ")
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}

// worldDir returns preset, or asks for the world directory when preset is empty.
func (p *prompter) worldDir(preset string) (string, error) {
	raw := preset
	if raw == "" {
		var err error
		raw, err = p.ask("Path to your world folder: ")
		if err != nil {
			return "", err
		}
	}
	return sanitizePath(raw)
}

// author returns preset, or asks for the label attached to uploaded changes.
func (p *prompter) author(preset string) (string, error) {
	name := strings.TrimSpace(preset)
	for name == "" {
		answer, err := p.ask("Name to label your changes with: ")
		if err != nil {
			return "", err
		}
		name = strings.TrimSpace(answer)
	}
	return name, nil
}

// sanitizePath turns a path typed or pasted into a terminal into a clean absolute path.
// Surrounding quotes, shell escaped spaces and a leading ~ are understood.
func sanitizePath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 && (p[0] == '"' || p[0] == '\'') && p[len(p)-1] == p[0] {
		p = p[1 : len(p)-1]
	}
	p = strings.ReplaceAll(p, `\ `, " ")
	if p == "" {
		return "", errors.New("no world path given")
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}

	p = filepath.Clean(p)
	if !filepath.IsAbs(p) {
		return "", fmt.Errorf("world path %q is not absolute", p)
	}
	return p, nil
}
