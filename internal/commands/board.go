package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"smartkanban/internal/exitcode"
	"smartkanban/internal/ui"
)

func init() {
	Register(&TUICmd{})
	Register(&ListCmd{})
	Register(&MoveCmd{})
}

// TUICmd runs the interactive board. It is the default command.
type TUICmd struct{}

func (c *TUICmd) Name() string                   { return "tui" }
func (c *TUICmd) Aliases() []string              { return nil }
func (c *TUICmd) Synopsis() string               { return "Interactive board" }
func (c *TUICmd) Usage() string                  { return "board tui" }
func (c *TUICmd) NeedsLogin() bool               { return true }
func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 0 {
		fmt.Fprintln(errOut, "error: tui takes no arguments")
		return exitcode.UserError
	}
	// The alt screen owns the terminal.
	env.Logger.SetOutput(io.Discard)
	if err := ui.RunTUI(ctx, env.Board, env.Interval, "Smart Kanban · "+env.Config.ServerURL); err != nil {
		return Fail(errOut, err)
	}
	return exitcode.Success
}

// ListCmd prints the board once.
type ListCmd struct {
	project string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "Print the board once" }
func (c *ListCmd) Usage() string     { return "board list [-project <project>]" }
func (c *ListCmd) NeedsLogin() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.project, "p", "", "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 0 {
		fmt.Fprintln(errOut, "error: list takes no arguments")
		return exitcode.UserError
	}
	if err := env.Board.Refresh(ctx); err != nil {
		return Fail(errOut, err)
	}
	if c.project != "" {
		p, err := findProject(env.Board, c.project)
		if err != nil {
			return Fail(errOut, err)
		}
		env.Board.SetFilter(p.ID)
	}
	if err := ui.WriteList(out, env.Board); err != nil {
		return Fail(errOut, err)
	}
	return exitcode.Success
}

// MoveCmd changes a task's status.
type MoveCmd struct{}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string {
	return "Move a task to todo, in-progress, checking or completed"
}
func (c *MoveCmd) Usage() string                  { return "board move <task> <status>" }
func (c *MoveCmd) NeedsLogin() bool               { return true }
func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: move needs <task> <status>")
		return exitcode.UserError
	}
	target, err := parseStatus(args[1])
	if err != nil {
		return Fail(errOut, err)
	}
	if err := env.Board.Refresh(ctx); err != nil {
		return Fail(errOut, err)
	}
	task, err := findTask(env.Board, args[0])
	if err != nil {
		return Fail(errOut, err)
	}
	if task.Status == target {
		fmt.Fprintf(out, "%s is already %s\n", task.Title, target)
		return exitcode.Success
	}
	if err := env.Board.Move(ctx, task.ID, target); err != nil {
		return Fail(errOut, err)
	}
	fmt.Fprintf(out, "moved %s to %s\n", task.Title, target)
	return exitcode.Success
}
