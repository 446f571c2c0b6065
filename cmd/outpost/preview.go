package main

import (
	"fmt"

	"github.com/outpostlabs/outpost/pkg/keygen"
	"github.com/outpostlabs/outpost/pkg/stack"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show the changes a deploy would make without applying them",
		RunE:  preview,
	}
}

func preview(cmd *cobra.Command, args []string) error {
	osfs := afero.NewOsFs()

	cfg, err := loadConfig(osfs)
	if err != nil {
		return err
	}

	publicKey, err := keygen.LoadPublicKey(osfs, cfg.KeyDir)
	if err != nil {
		return fmt.Errorf("no SSH public key in %s, run `outpost init` first: %w", cfg.KeyDir, err)
	}

	ctx, stopProgress := startProgress(cmd.Context(), "preview")
	result, err := stack.RunPreview(ctx, osfs, stackReference(cfg), stack.Program(cfg.Topology(), publicKey))
	stopProgress()
	if err != nil {
		return err
	}

	for op, count := range result.ChangeSummary {
		fmt.Printf("%s: %d\n", op, count)
	}
	return nil
}
