package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/de-tools/funding-atlas/pkg/runtime/terminal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli := terminal.NewCLI(terminal.Options{
		Output:    os.Stdout,
		ErrOutput: os.Stderr,
	})

	err := cli.Execute(ctx)
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
