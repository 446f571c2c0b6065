package main

import (
	"fmt"

	"github.com/outpostlabs/outpost/pkg/config"
	"github.com/outpostlabs/outpost/pkg/keygen"
	"github.com/outpostlabs/outpost/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var initConfig struct {
	project     string
	environment string
	region      string
	keyDir      string
}

func newInitCmd() *cobra.Command {
	initCommand := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration and generate the SSH key pair",
		RunE:  initRun,
	}
	flags := initCommand.Flags()
	flags.StringVar(&initConfig.project, "project", "", "Project name")
	flags.StringVarP(&initConfig.environment, "environment", "e", "", "Environment name")
	flags.StringVarP(&initConfig.region, "region", "r", "", "AWS region")
	flags.StringVar(&initConfig.keyDir, "key-dir", "", "Directory for the SSH key pair")
	return initCommand
}

func initRun(cmd *cobra.Command, args []string) error {
	log := logging.GetLogger(cmd.Context()).Sugar()
	osfs := afero.NewOsFs()

	cfg := config.Default()
	if initConfig.project != "" {
		cfg.Project = initConfig.project
	}
	if initConfig.environment != "" {
		cfg.Environment = initConfig.environment
	}
	if initConfig.region != "" {
		cfg.Region = initConfig.region
	}
	if initConfig.keyDir != "" {
		cfg.KeyDir = initConfig.keyDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Write(osfs, commonCfg.configPath, cfg); err != nil {
		return fmt.Errorf("error writing configuration: %w", err)
	}
	log.Infof("Wrote %s", commonCfg.configPath)

	if _, err := keygen.EnsureKeyPair(osfs, cfg.KeyDir); err != nil {
		return fmt.Errorf("error generating SSH key pair: %w", err)
	}
	log.Infof("SSH key pair ready at %s", keygen.PrivateKeyPath(cfg.KeyDir))

	return nil
}
