// Command sizer computes trade position sizes from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"position-sizer/internal/cli"
	"position-sizer/internal/errors"
)

const (
	exitError = 1
	exitRisk  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Configuration and the real logger are loaded once flags are parsed.
	root := cli.NewRootCmd(nil, zerolog.Nop())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))

		var riskErr *errors.RiskError
		if errors.As(err, &riskErr) {
			stop()
			os.Exit(exitRisk)
		}
		stop()
		os.Exit(exitError)
	}
}
