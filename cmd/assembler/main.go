package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	os.Exit(run())
}

// run executes the command line and returns the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, err)

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	return 1
}

// exitError ends the process with a specific exit code.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	return e.message
}

// rejectedError reports descriptors that did not compile, after the compiled graphs were printed.
func rejectedError(rejected int) error {
	if rejected == 0 {
		return nil
	}

	return &exitError{code: 2, message: fmt.Sprintf("%d descriptor(s) rejected", rejected)}
}
