// Command board is the terminal client for a Smart Kanban server.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"smartkanban/internal/cli"
	"smartkanban/internal/commands"
	"smartkanban/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	return cli.NewDispatcher(commands.DefaultRegistry, config.DefaultClientPath()).Run(ctx, args, out, errOut)
}
