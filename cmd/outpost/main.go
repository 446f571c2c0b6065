package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	clicommon "github.com/outpostlabs/outpost/pkg/cli_common"
	"github.com/outpostlabs/outpost/pkg/config"
	"github.com/spf13/cobra"
)

var commonCfg struct {
	clicommon.CommonConfig
	configPath string
}

func cli() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "outpost",
		Short: "Deploy a single-instance SSH sandbox on AWS",
	}
	clicommon.SetupRoot(rootCmd, &commonCfg.CommonConfig)
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&commonCfg.configPath, "config", "c", config.DefaultFileName, "Path to the deployment configuration")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newDownCmd())
	rootCmd.AddCommand(newOutputsCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(cli())
}
