package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"smartkanban/internal/board"
	"smartkanban/internal/exitcode"
	"smartkanban/internal/model"
)

func init() {
	Register(&AddCmd{})
	Register(&EditCmd{})
	Register(&RmCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	project     string
	priority    string
	status      string
	description string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "board add [-project <project>] [-priority <p>] [-status <s>] [-description <text>] <title...>"
}
func (c *AddCmd) NeedsLogin() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.project, "p", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	input := model.TaskInput{Title: title, Description: c.description}
	if c.priority != "" {
		p, err := parsePriority(c.priority)
		if err != nil {
			return Fail(errOut, err)
		}
		input.Priority = p
	}
	if c.status != "" {
		st, err := parseStatus(c.status)
		if err != nil {
			return Fail(errOut, err)
		}
		input.Status = st
	}

	if err := env.Board.Refresh(ctx); err != nil {
		return Fail(errOut, err)
	}
	project, err := targetProject(env.Board, c.project)
	if err != nil {
		return Fail(errOut, err)
	}
	input.ProjectID = project.ID

	task, err := env.Board.CreateTask(ctx, input)
	if err != nil {
		return Fail(errOut, err)
	}
	fmt.Fprintf(out, "added %s  %s\n", task.ID, task.Title)
	return exitcode.Success
}

// targetProject is the named project, or the default one when ref is empty.
func targetProject(b *board.Board, ref string) (model.Project, error) {
	if ref != "" {
		return findProject(b, ref)
	}
	if p, ok := b.DefaultProject(); ok {
		return p, nil
	}
	return model.Project{}, usagef("no default project; use -project")
}

// EditCmd changes the fields given as flags and leaves the rest alone.
type EditCmd struct {
	title       *string
	description *string
	priority    *string
	status      *string
	project     *string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "board edit [-title <t>] [-description <text>] [-priority <p>] [-status <s>] [-project <project>] <task>"
}
func (c *EditCmd) NeedsLogin() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	set := func(dst **string) func(string) error {
		return func(v string) error {
			*dst = &v
			return nil
		}
	}
	fs.Func("title", "", set(&c.title))
	fs.Func("description", "", set(&c.description))
	fs.Func("priority", "", set(&c.priority))
	fs.Func("status", "", set(&c.status))
	fs.Func("project", "", set(&c.project))
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: edit needs exactly one <task>")
		return exitcode.UserError
	}
	patch := model.TaskPatch{Title: c.title, Description: c.description}
	if c.title != nil && strings.TrimSpace(*c.title) == "" {
		fmt.Fprintln(errOut, "error: title cannot be empty")
		return exitcode.UserError
	}
	if c.priority != nil {
		p, err := parsePriority(*c.priority)
		if err != nil {
			return Fail(errOut, err)
		}
		patch.Priority = &p
	}
	if c.status != nil {
		st, err := parseStatus(*c.status)
		if err != nil {
			return Fail(errOut, err)
		}
		patch.Status = &st
	}
	if patch == (model.TaskPatch{}) && c.project == nil {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	if err := env.Board.Refresh(ctx); err != nil {
		return Fail(errOut, err)
	}
	task, err := findTask(env.Board, args[0])
	if err != nil {
		return Fail(errOut, err)
	}
	if c.project != nil {
		p, err := findProject(env.Board, *c.project)
		if err != nil {
			return Fail(errOut, err)
		}
		patch.ProjectID = &p.ID
	}

	updated, err := env.Board.UpdateTask(ctx, task.ID, patch)
	if err != nil {
		return Fail(errOut, err)
	}
	fmt.Fprintf(out, "updated %s\n", updated.Title)
	return exitcode.Success
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string                   { return "rm" }
func (c *RmCmd) Aliases() []string              { return []string{"delete"} }
func (c *RmCmd) Synopsis() string               { return "Delete a task" }
func (c *RmCmd) Usage() string                  { return "board rm <task>" }
func (c *RmCmd) NeedsLogin() bool               { return true }
func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	}
	if err := env.Board.Refresh(ctx); err != nil {
		return Fail(errOut, err)
	}
	task, err := findTask(env.Board, args[0])
	if err != nil {
		return Fail(errOut, err)
	}
	if err := env.Board.DeleteTask(ctx, task.ID); err != nil {
		return Fail(errOut, err)
	}
	fmt.Fprintf(out, "removed %s\n", task.Title)
	return exitcode.Success
}
