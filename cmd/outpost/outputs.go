package main

import (
	"fmt"

	"github.com/outpostlabs/outpost/pkg/keygen"
	"github.com/outpostlabs/outpost/pkg/stack"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var outputsConfig struct {
	live bool
}

func newOutputsCmd() *cobra.Command {
	outputsCommand := &cobra.Command{
		Use:   "outputs",
		Short: "Print the deployed stack outputs",
		RunE:  outputs,
	}
	flags := outputsCommand.Flags()
	flags.BoolVar(&outputsConfig.live, "live", false, "Query the stack instead of the local deployment record")
	return outputsCommand
}

func outputs(cmd *cobra.Command, args []string) error {
	osfs := afero.NewOsFs()

	cfg, err := loadConfig(osfs)
	if err != nil {
		return err
	}

	if outputsConfig.live {
		publicKey, err := keygen.LoadPublicKey(osfs, cfg.KeyDir)
		if err != nil {
			return fmt.Errorf("no SSH public key in %s: %w", cfg.KeyDir, err)
		}
		live, err := stack.Outputs(cmd.Context(), osfs, stackReference(cfg), stack.Program(cfg.Topology(), publicKey))
		if err != nil {
			return err
		}
		printOutputs(live)
		return nil
	}

	sm, err := stateManager(osfs, cfg)
	if err != nil {
		return err
	}
	state := sm.GetState()
	if len(state.Outputs) == 0 {
		return fmt.Errorf("no recorded outputs for %s/%s, run `outpost up` first", cfg.Project, cfg.Environment)
	}
	printOutputs(state.Outputs)
	return nil
}
