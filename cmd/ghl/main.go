package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghl-cli/ghl/cmd/ghl/commands"
	"github.com/ghl-cli/ghl/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := config.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	runtime := &commands.Runtime{Store: store}
	root := commands.NewRootCommand(runtime, version, commit, date)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Aborted!")

			return 130
		}

		if errors.Is(err, commands.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted!")

			return 1
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}
