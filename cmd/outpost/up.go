package main

import (
	"fmt"

	"github.com/outpostlabs/outpost/pkg/keygen"
	"github.com/outpostlabs/outpost/pkg/logging"
	"github.com/outpostlabs/outpost/pkg/model"
	"github.com/outpostlabs/outpost/pkg/stack"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Deploy the sandbox, creating or updating its resources",
		RunE:  up,
	}
}

func up(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.GetLogger(ctx).Sugar()
	osfs := afero.NewOsFs()

	cfg, err := loadConfig(osfs)
	if err != nil {
		return err
	}

	publicKey, err := keygen.LoadPublicKey(osfs, cfg.KeyDir)
	if err != nil {
		return fmt.Errorf("no SSH public key in %s, run `outpost init` first: %w", cfg.KeyDir, err)
	}

	sm, err := stateManager(osfs, cfg)
	if err != nil {
		return err
	}

	if err := sm.Transition(model.InFlightStatus(sm.GetState().Status)); err != nil {
		return err
	}
	if err := sm.SaveState(); err != nil {
		return fmt.Errorf("error saving state: %w", err)
	}

	ctx, stopProgress := startProgress(ctx, "deployment")
	upResult, _, upErr := stack.RunUp(ctx, osfs, stackReference(cfg), stack.Program(cfg.Topology(), publicKey))
	stopProgress()

	result := "failed"
	if upErr == nil {
		result = string(upResult.Summary.Result)
	}
	if err := sm.Transition(model.NextStatus(sm.GetState().Status, result)); err != nil {
		log.Warnf("Error recording deployment status: %v", err)
	}
	if upErr != nil {
		if err := sm.SaveState(); err != nil {
			log.Warnf("Error saving state: %v", err)
		}
		return upErr
	}

	outputs := make(map[string]string, len(upResult.Outputs))
	for key, value := range upResult.Outputs {
		outputs[key] = fmt.Sprint(value.Value)
	}
	sm.RegisterOutputs(outputs)
	if err := sm.SaveState(); err != nil {
		return fmt.Errorf("error saving state: %w", err)
	}

	printOutputs(outputs)
	return nil
}
