package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"smartkanban/internal/exitcode"
	"smartkanban/internal/model"
)

func init() {
	Register(&ProjectCmd{})
}

// ProjectCmd manages projects through its own subcommands: list, add,
// edit and rm.
type ProjectCmd struct{}

func (c *ProjectCmd) Name() string      { return "project" }
func (c *ProjectCmd) Aliases() []string { return []string{"projects"} }
func (c *ProjectCmd) Synopsis() string  { return "List, add, edit or delete projects" }
func (c *ProjectCmd) Usage() string {
	return "board project [list | add [-color <c>] <name...> | edit [-name <n>] [-color <c>] <project> | rm <project>]"
}
func (c *ProjectCmd) NeedsLogin() bool               { return true }
func (c *ProjectCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProjectCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	sub, rest := "list", args
	if len(args) > 0 {
		sub, rest = args[0], args[1:]
	}

	fs := flag.NewFlagSet("project "+sub, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var name, color optString
	switch sub {
	case "list", "ls":
	case "add", "create":
		fs.Var(&color, "color", "")
	case "edit":
		fs.Var(&name, "name", "")
		fs.Var(&color, "color", "")
	case "rm", "delete":
	default:
		fmt.Fprintf(errOut, "error: unknown project command: %s\n", sub)
		return exitcode.UserError
	}
	if err := fs.Parse(rest); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	rest = fs.Args()

	if err := env.Board.Refresh(ctx); err != nil {
		return Fail(errOut, err)
	}
	b := env.Board

	switch sub {
	case "list", "ls":
		for _, p := range b.Projects() {
			line := fmt.Sprintf("%s  %s  %s", p.ID, p.Name, p.Color)
			if p.IsDefault {
				line += "  [default]"
			}
			fmt.Fprintln(out, line)
		}

	case "add", "create":
		title := strings.TrimSpace(strings.Join(rest, " "))
		if title == "" {
			fmt.Fprintln(errOut, "error: project name required")
			return exitcode.UserError
		}
		p, err := b.CreateProject(ctx, title, color.value)
		if err != nil {
			return Fail(errOut, err)
		}
		fmt.Fprintf(out, "added project %s  %s\n", p.ID, p.Name)

	case "edit":
		if len(rest) != 1 {
			fmt.Fprintln(errOut, "error: edit needs exactly one <project>")
			return exitcode.UserError
		}
		patch := model.ProjectPatch{Name: name.ptr(), Color: color.ptr()}
		if patch.Name == nil && patch.Color == nil {
			fmt.Fprintln(errOut, "error: nothing to change")
			return exitcode.UserError
		}
		p, err := findProject(b, rest[0])
		if err != nil {
			return Fail(errOut, err)
		}
		updated, err := b.UpdateProject(ctx, p.ID, patch)
		if err != nil {
			return Fail(errOut, err)
		}
		fmt.Fprintf(out, "updated project %s\n", updated.Name)

	case "rm", "delete":
		if len(rest) != 1 {
			fmt.Fprintln(errOut, "error: project reference required")
			return exitcode.UserError
		}
		p, err := findProject(b, rest[0])
		if err != nil {
			return Fail(errOut, err)
		}
		if p.IsDefault {
			fmt.Fprintln(errOut, "error: cannot delete the default project")
			return exitcode.UserError
		}
		if err := b.DeleteProject(ctx, p.ID); err != nil {
			return Fail(errOut, err)
		}
		fmt.Fprintf(out, "removed project %s\n", p.Name)
	}
	return exitcode.Success
}

// optString is a flag.Value that remembers whether it was set.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(v string) error {
	o.value, o.set = v, true
	return nil
}

func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
