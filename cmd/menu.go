package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type menuCommand int

const (
	menuInvalid menuCommand = iota
	menuUpdate
	menuUpload
	menuRules
	menuHelp
	menuQuit
)

// parseMenuCommand matches a line typed at the menu prompt. Line endings (\n or \r\n) and
// surrounding blanks are ignored.
func parseMenuCommand(line string) menuCommand {
	switch strings.TrimSpace(line) {
	case "update":
		return menuUpdate
	case "upload":
		return menuUpload
	case "rules":
		return menuRules
	case "help":
		return menuHelp
	case "quit":
		return menuQuit
	default:
		return menuInvalid
	}
}

// menuActions performs the commands that touch the shared world.
type menuActions interface {
	Update(ctx context.Context, p *prompter) error
	Upload(ctx context.Context, p *prompter) error
	Close()
}

type menu struct {
	prompt  *prompter
	out     io.Writer
	actions menuActions
}

func newMenu(in io.Reader, out io.Writer, actions menuActions) *menu {
	return &menu{prompt: newPrompter(in, out), out: out, actions: actions}
}

// run shows the menu and dispatches commands until quit or end of input. A failed update or
// upload is reported and the menu continues.
func (m *menu) run(ctx context.Context) error {
	defer m.actions.Close()

	fmt.Fprintln(m.out, "\nWelcome to the shared save!")
	fmt.Fprint(m.out, menuText)
	for {
		line, err := m.prompt.ask("> ")
		if errors.Is(err, errNoInput) {
			return nil
		}
		if err != nil {
			return err
		}

		switch parseMenuCommand(line) {
		case menuQuit:
			return nil
		case menuHelp:
			fmt.Fprint(m.out, menuText)
		case menuRules:
			fmt.Fprint(m.out, rulesText)
		case menuUpdate:
			m.report(m.actions.Update(ctx, m.prompt))
		case menuUpload:
			m.report(m.actions.Upload(ctx, m.prompt))
		default:
			fmt.Fprintln(m.out, "Invalid input!")
			fmt.Fprint(m.out, menuText)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (m *menu) report(err error) {
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
}

// cliActions opens the runtime on first use so rules and help work offline.
type cliActions struct {
	cmd *cobra.Command
	rt  *runtime
}

func (a *cliActions) runtime(ctx context.Context) (*runtime, error) {
	if a.rt != nil {
		return a.rt, nil
	}
	rt, err := openRuntime(ctx)
	if err != nil {
		return nil, err
	}
	a.rt = rt
	return rt, nil
}

func (a *cliActions) Update(ctx context.Context, p *prompter) error {
	rt, err := a.runtime(ctx)
	if err != nil {
		return err
	}
	return runUpdate(ctx, rt, p, a.cmd.OutOrStdout(), syncOptions{interactive: true})
}

func (a *cliActions) Upload(ctx context.Context, p *prompter) error {
	rt, err := a.runtime(ctx)
	if err != nil {
		return err
	}
	return runUpload(ctx, rt, p, a.cmd.OutOrStdout(), syncOptions{interactive: true})
}

func (a *cliActions) Close() {
	if a.rt != nil {
		a.rt.Close()
	}
}
