package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"smartkanban/internal/auth"
	"smartkanban/internal/exitcode"
)

func init() {
	Register(&RegisterCmd{})
	Register(&WhoamiCmd{})
}

// RegisterCmd creates an account on a server in account mode, using the
// configured email and password.
type RegisterCmd struct{}

func (c *RegisterCmd) Name() string                   { return "register" }
func (c *RegisterCmd) Aliases() []string              { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string               { return "Create an account" }
func (c *RegisterCmd) Usage() string                  { return "board register" }
func (c *RegisterCmd) NeedsLogin() bool               { return false }
func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if env.Client.Mode() != auth.ModeAccount {
		fmt.Fprintf(errOut, "error: register is only available in account mode\n")
		return exitcode.UserError
	}
	if env.Config.Email == "" {
		fmt.Fprintln(errOut, "error: no email; set email in the config file")
		return exitcode.AuthError
	}
	if env.Config.Password == "" {
		fmt.Fprintf(errOut, "error: no password; set %s\n", env.Config.PasswordEnv)
		return exitcode.AuthError
	}
	user, err := env.Client.Register(ctx, env.Config.Email, env.Config.Password)
	if err != nil {
		return Fail(errOut, err)
	}
	fmt.Fprintf(out, "registered %s\n", user.Email)
	return exitcode.Success
}

// WhoamiCmd prints who the session belongs to.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string                   { return "whoami" }
func (c *WhoamiCmd) Aliases() []string              { return nil }
func (c *WhoamiCmd) Synopsis() string               { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string                  { return "board whoami" }
func (c *WhoamiCmd) NeedsLogin() bool               { return true }
func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	switch env.Client.Mode() {
	case auth.ModeOpen:
		fmt.Fprintln(out, "open mode, no login")
	case auth.ModeShared:
		fmt.Fprintf(out, "%s (shared login)\n", env.Config.Login())
	default:
		user, err := env.Client.Me(ctx)
		if err != nil {
			return Fail(errOut, err)
		}
		fmt.Fprintln(out, user.Email)
	}
	return exitcode.Success
}
