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

func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Destroy the sandbox and all of its resources",
		RunE:  down,
	}
}

func down(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.GetLogger(ctx).Sugar()
	osfs := afero.NewOsFs()

	cfg, err := loadConfig(osfs)
	if err != nil {
		return err
	}

	publicKey, err := keygen.LoadPublicKey(osfs, cfg.KeyDir)
	if err != nil {
		return fmt.Errorf("no SSH public key in %s: %w", cfg.KeyDir, err)
	}

	sm, err := stateManager(osfs, cfg)
	if err != nil {
		return err
	}

	if err := sm.Transition(model.StatusDeleting); err != nil {
		return err
	}
	if err := sm.SaveState(); err != nil {
		return fmt.Errorf("error saving state: %w", err)
	}

	ctx, stopProgress := startProgress(ctx, "teardown")
	downErr := stack.RunDown(ctx, osfs, stackReference(cfg), stack.Program(cfg.Topology(), publicKey))
	stopProgress()

	next := model.StatusDeleteComplete
	if downErr != nil {
		next = model.StatusDeleteFailed
	}
	if err := sm.Transition(next); err != nil {
		log.Warnf("Error recording deployment status: %v", err)
	}
	if downErr == nil {
		sm.ClearOutputs()
	}
	if err := sm.SaveState(); err != nil {
		log.Warnf("Error saving state: %v", err)
	}
	return downErr
}
