// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/careerflow/cmd"
)

// main is the entry point for the careerflow CLI.
func main() {
	// Ctrl+C cancels the running journey; the runner still captures
	// diagnostics and closes the browser before exiting.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
