// Command resourcemap lays out nested resource graphs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/resourcemap/internal/cli"
	rmerrors "github.com/matzehuels/resourcemap/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

// newRoot adds --verbose on top of the CLI's root command. The level is
// raised before the config loads so that loading is logged too.
func newRoot() *cobra.Command {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if next == nil {
			return nil
		}
		return next(cmd, args)
	}
	return root
}

// exitCode is 0 on success, 130 after an interrupt, 2 for invalid input and
// 1 for anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	switch rmerrors.GetCode(err) {
	case rmerrors.ErrCodeInvalidInput, rmerrors.ErrCodeInvalidGraph, rmerrors.ErrCodeInvalidAspectRatio,
		rmerrors.ErrCodeInvalidFormat, rmerrors.ErrCodeInvalidConfig, rmerrors.ErrCodeFileNotFound:
		return 2
	}
	return 1
}
