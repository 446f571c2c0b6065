package clicommon

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/outpostlabs/outpost/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type CommonConfig struct {
	verbose   bool
	jsonLog   bool
	color     string
	profileTo string
}

func (c *CommonConfig) Verbose() bool {
	return c.verbose
}

// Interactive reports whether stderr is a terminal that can host live
// progress rendering. JSON logging always disables it.
func (c *CommonConfig) Interactive() bool {
	if c.jsonLog || c.color == "never" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (c *CommonConfig) LogOpts() logging.LogOpts {
	logOpts := logging.LogOpts{
		Verbose: c.verbose,
		Color:   c.color,
		DefaultLevels: map[string]zapcore.Level{
			"pulumi.events": zap.WarnLevel,
		},
	}
	if c.jsonLog {
		logOpts.Encoding = "json"
	}
	return logOpts
}

func setupProfiling(commonCfg *CommonConfig) func() {
	if commonCfg.profileTo != "" {
		err := os.MkdirAll(filepath.Dir(commonCfg.profileTo), 0755)
		if err != nil {
			panic(fmt.Errorf("failed to create profile directory: %w", err))
		}
		profileF, err := os.OpenFile(commonCfg.profileTo, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open profile file: %w", err))
		}
		err = pprof.StartCPUProfile(profileF)
		if err != nil {
			panic(fmt.Errorf("failed to start profile: %w", err))
		}
		return func() {
			pprof.StopCPUProfile()
			profileF.Close()
		}
	}
	return func() {}
}

func SetupRoot(root *cobra.Command, commonCfg *CommonConfig) {
	flags := root.PersistentFlags()
	flags.BoolVarP(&commonCfg.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&commonCfg.jsonLog, "json-log", false, "Enable JSON logging")
	flags.StringVar(&commonCfg.color, "color", "auto", "Colorize output (auto, always, never)")
	flags.StringVar(&commonCfg.profileTo, "profiling", "", "Profile to file")

	profileClose := func() {}

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		zap.ReplaceGlobals(commonCfg.LogOpts().NewLogger())

		profileClose = setupProfiling(commonCfg)
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		zap.L().Sync() //nolint:errcheck

		profileClose()
	}
}
