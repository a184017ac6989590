// Package cli parses the board client's command line and runs the
// matching command.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"smartkanban/internal/apiclient"
	"smartkanban/internal/auth"
	"smartkanban/internal/board"
	"smartkanban/internal/commands"
	"smartkanban/internal/config"
	"smartkanban/internal/exitcode"
	"smartkanban/internal/logging"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "tui"

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry    *commands.Registry
	defaultPath string
}

// NewDispatcher creates a dispatcher reading the client config from
// defaultPath unless -config is given.
func NewDispatcher(registry *commands.Registry, defaultPath string) *Dispatcher {
	return &Dispatcher{registry: registry, defaultPath: defaultPath}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	global := flag.NewFlagSet("board", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", d.defaultPath, "")
	if err := global.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		commands.WriteUsage(errOut, d.registry)
		return exitcode.UserError
	}

	name, rest := DefaultCommand, global.Args()
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}
	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		commands.WriteUsage(errOut, d.registry)
		return exitcode.UserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(rest); err != nil {
		fmt.Fprintf(errOut, "error: %v\nusage: %s\n", err, cmd.Usage())
		return exitcode.UserError
	}
	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") && positional[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	env, code := d.session(ctx, cmd, *configPath, errOut)
	if code != exitcode.Success {
		return code
	}
	return cmd.Run(ctx, env, positional, out, errOut)
}

// session loads the client config and builds the API client and board,
// logging in first when the command needs it.
func (d *Dispatcher) session(ctx context.Context, cmd commands.Command, path string, errOut io.Writer) (*commands.Env, int) {
	cfg, err := config.LoadClient(path)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.AuthError
	}
	interval, _ := cfg.Interval()
	mode, err := auth.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.AuthError
	}

	logger := logging.NewWithWriter(errOut, logging.Options{Level: "error", Prefix: "board"})
	client, err := apiclient.New(cfg.ServerURL, mode, apiclient.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.AuthError
	}

	if cmd.NeedsLogin() && mode != auth.ModeOpen {
		if cfg.Password == "" {
			fmt.Fprintf(errOut, "error: no password; set %s\n", cfg.PasswordEnv)
			return nil, exitcode.AuthError
		}
		if _, err := client.Login(ctx, cfg.Login(), cfg.Password); err != nil {
			fmt.Fprintf(errOut, "error: login: %v\n", err)
			return nil, exitcode.AuthError
		}
	}

	return &commands.Env{
		Config:   cfg,
		Client:   client,
		Board:    board.New(client, logger),
		Interval: interval,
		Logger:   logger,
	}, exitcode.Success
}
