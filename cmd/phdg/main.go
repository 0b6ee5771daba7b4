// Command phdg builds pressure-temperature phase diagrams from tabulated
// Gibbs free energies.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/phdg/internal/interfaces/cli"
	"github.com/turtacn/phdg/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Interrupts cancel long classifications and stop watch cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	os.Exit(errors.ExitCode(err))
}

//Personal.AI order the ending
