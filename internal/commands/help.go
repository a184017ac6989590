package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"smartkanban/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string                   { return "help" }
func (c *HelpCmd) Aliases() []string              { return nil }
func (c *HelpCmd) Synopsis() string               { return "Print usage" }
func (c *HelpCmd) Usage() string                  { return "board help" }
func (c *HelpCmd) NeedsLogin() bool               { return false }
func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	WriteUsage(out, DefaultRegistry)
	return exitcode.Success
}

// WriteUsage prints the global usage line and one line per command.
func WriteUsage(w io.Writer, r *Registry) {
	fmt.Fprint(w, "usage: board [-config path] [command] [flags] [args]\n\ncommands:\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, cmd := range r.All() {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Name(), cmd.Synopsis())
	}
	_ = tw.Flush()
	fmt.Fprint(w, "\nWithout a command the interactive board starts.\n")
}
