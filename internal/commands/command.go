// Package commands provides the board client's subcommands.
package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"smartkanban/internal/apiclient"
	"smartkanban/internal/board"
	"smartkanban/internal/config"
)

// Env is the session a command runs in.
type Env struct {
	Config   *config.Client
	Client   *apiclient.Client
	Board    *board.Board
	Interval time.Duration
	Logger   *log.Logger
}

// Command defines the interface for board subcommands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsLogin returns true if the command needs a session token when
	// the server is not in open mode. register and help return false.
	NeedsLogin() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command with the positional arguments left after
	// flag parsing and returns the exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
