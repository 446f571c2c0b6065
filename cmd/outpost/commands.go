package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/outpostlabs/outpost/pkg/config"
	"github.com/outpostlabs/outpost/pkg/model"
	"github.com/outpostlabs/outpost/pkg/stack"
	"github.com/outpostlabs/outpost/pkg/tui"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func loadConfig(fs afero.Fs) (*config.Config, error) {
	cfg, err := config.Load(fs, commonCfg.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no configuration found at %s, run `outpost init` first", commonCfg.configPath)
		}
		return nil, err
	}
	return cfg, nil
}

func stackReference(cfg *config.Config) stack.Reference {
	return stack.Reference{
		Project:     cfg.Project,
		Environment: cfg.Environment,
		AwsRegion:   cfg.Region,
	}
}

// stateManager opens the deployment record under
// ~/.outpost/<project>/<environment>/state.yaml, loading it if present.
func stateManager(fs afero.Fs, cfg *config.Config) (*model.StateManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	stateDir := filepath.Join(homeDir, ".outpost", cfg.Project, cfg.Environment)
	if err := fs.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating state directory: %w", err)
	}

	sm := model.NewStateManager(fs, filepath.Join(stateDir, "state.yaml"))
	if sm.CheckStateFileExists() {
		if err := sm.LoadState(); err != nil {
			return nil, fmt.Errorf("error loading state: %w", err)
		}
	} else {
		sm.InitState(cfg.Project, cfg.Environment, cfg.Region)
	}
	return sm, nil
}

// startProgress attaches live progress rendering to ctx. On a terminal it
// runs a bubbletea program and reroutes the global logger through it, since
// the renderer owns stderr while it runs; otherwise progress falls through to
// the logger. The returned func stops the renderer and must be called before
// printing anything else to the terminal.
func startProgress(ctx context.Context, task string) (context.Context, func()) {
	if !commonCfg.Interactive() {
		return ctx, func() {}
	}

	prog := tea.NewProgram(
		tui.NewModel(commonCfg.Verbose()),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = prog.Run()
	}()

	logCore := tui.NewLogCore(commonCfg.LogOpts(), commonCfg.Verbose(), prog)
	restoreLogger := zap.ReplaceGlobals(zap.New(logCore).With(zap.String("task", task)))

	ctx = tui.WithProgress(ctx, &tui.TuiProgress{Prog: prog, Task: task})
	return ctx, func() {
		prog.Quit()
		<-done
		restoreLogger()
	}
}

func printOutputs(outputs map[string]string) {
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bold := color.New(color.Bold)
	for _, k := range keys {
		bold.Printf("%s: ", k)
		fmt.Println(outputs[k])
	}
}
