package main

import (
	"context"
	"fmt"
	"os"

	"github.com/petasbytes/go-builder/internal/codestore"
	"github.com/petasbytes/go-builder/internal/config"
	"github.com/petasbytes/go-builder/internal/fsops"
	"github.com/petasbytes/go-builder/internal/history"
	"github.com/petasbytes/go-builder/internal/progress"
	"github.com/petasbytes/go-builder/internal/provider"
	"github.com/petasbytes/go-builder/internal/runner"
	"github.com/petasbytes/go-builder/internal/safety"
	"github.com/petasbytes/go-builder/tools"
)

// app is the wired agent shared by the serve and run commands.
type app struct {
	cfg     *config.Config
	tracker *progress.Tracker
	runner  *runner.Runner
	codes   *codestore.Store

	// ctx is the parent of every run; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

func newApp(parent context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	// Telemetry resolves its directory from the environment.
	if os.Getenv("AGT_ARTIFACTS_DIR") == "" {
		_ = os.Setenv("AGT_ARTIFACTS_DIR", cfg.ArtifactsDir)
	}

	gw, err := provider.New(cfg.Model, provider.Options{
		BaseURL:   cfg.Provider.BaseURL,
		MaxTokens: cfg.Provider.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	sb, err := fsops.New(cfg.Workspace.ReadRoot, cfg.Workspace.WriteRoot, safety.DefaultPolicy())
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	instructions, err := runner.LoadInstructions(cfg.InstructionsPath)
	if err != nil {
		return nil, err
	}
	codes, err := codestore.Open(parent, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker(cfg.MaxIterations)
	r := runner.New(gw,
		tools.Registry(tools.Deps{Sandbox: sb, Codes: codes}),
		tracker,
		history.NewRecorder(cfg.HistoryPath),
		runner.Options{
			Model:          cfg.Model,
			MaxIterations:  cfg.MaxIterations,
			Instructions:   instructions,
			Pacing:         runner.Pacing{PassDelay: cfg.Pacing.PassDelay, AnomalyDelay: cfg.Pacing.AnomalyDelay},
			TranscriptPath: cfg.TranscriptPath,
		})
	ctx, cancel := context.WithCancel(parent)
	return &app{cfg: cfg, tracker: tracker, runner: r, codes: codes, ctx: ctx, cancel: cancel}, nil
}

// Close cancels in-flight runs, waits for background runs to return and
// then closes the code store.
func (a *app) Close() error {
	a.cancel()
	a.runner.Wait()
	return a.codes.Close()
}
