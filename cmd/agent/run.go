package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
)

// RunCmd executes one run in the foreground.
// Usage: agent run "build a todo app"   (or pipe the request on stdin)
type RunCmd struct {
	root *Options
}

func (c *RunCmd) Execute(args []string) error {
	request := strings.TrimSpace(strings.Join(args, " "))
	if request == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		request = strings.TrimSpace(string(b))
	}
	if request == "" {
		return errors.New("a request is required")
	}

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, c.root.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	runID := uuid.NewString()
	outcome, err := a.runner.Run(a.ctx, runID, request)
	s := a.tracker.Snapshot()
	fmt.Println(s.Output)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "run %s: %s after %d of %d iterations (history: %s)\n",
		runID, outcome, s.Iteration, s.MaxIterations, a.cfg.HistoryPath)
	return nil
}
