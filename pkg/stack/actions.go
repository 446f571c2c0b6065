package stack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/outpostlabs/outpost/pkg/logging"
	"github.com/outpostlabs/outpost/pkg/tui"
	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/tokens"
	"github.com/pulumi/pulumi/sdk/v3/go/common/workspace"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Reference names one deployment: a project/environment pair and the region
// it deploys into.
type Reference struct {
	Project     string
	Environment string
	AwsRegion   string
}

func (r Reference) StackName() string {
	return r.Environment
}

// Initialize creates or selects the stack for ref, backed by a local file
// backend under ~/.outpost/pulumi. The program is hosted inline, so no
// separate project directory or language runtime is involved.
func Initialize(ctx context.Context, fs afero.Fs, ref Reference, program pulumi.RunFunc) (StackInterface, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	pulumiHomeDir := filepath.Join(homeDir, ".outpost", "pulumi")

	if exists, err := afero.DirExists(fs, pulumiHomeDir); !exists || err != nil {
		if err := fs.MkdirAll(pulumiHomeDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create pulumi home directory: %w", err)
		}
	}

	stateDir := filepath.Join(pulumiHomeDir, "state")
	if exists, err := afero.DirExists(fs, stateDir); !exists || err != nil {
		if err := fs.MkdirAll(stateDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create stack state directory: %w", err)
		}
	}

	proj := auto.Project(workspace.Project{
		Name:    tokens.PackageName(ref.Project),
		Runtime: workspace.NewProjectRuntimeInfo("go", nil),
		Backend: &workspace.ProjectBackend{
			URL: "file://" + stateDir,
		},
	})
	secretsProvider := auto.SecretsProvider("passphrase")
	envvars := auto.EnvVars(map[string]string{
		"PULUMI_CONFIG_PASSPHRASE": "",
	})
	stack, err := auto.UpsertStackInlineSource(ctx, ref.StackName(), ref.Project, program,
		proj, envvars, auto.PulumiHome(pulumiHomeDir), secretsProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create or select stack: %w", err)
	}
	return &stack, nil
}

func RunUp(ctx context.Context, fs afero.Fs, ref Reference, program pulumi.RunFunc) (*auto.UpResult, *State, error) {
	log := logging.GetLogger(ctx).Named("pulumi.up").Sugar()

	s, err := Initialize(ctx, fs, ref, program)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("Created/Selected stack %q", ref.StackName())

	// set stack configuration specifying the AWS region to deploy
	err = s.SetConfig(ctx, "aws:region", auto.ConfigValue{Value: ref.AwsRegion})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set stack configuration: %w", err)
	}

	log.Debug("Starting update")

	prog := tui.GetProgress(ctx)
	upResult, err := s.Up(
		ctx,
		optup.ProgressStreams(logging.NewLoggerWriter(log.Desugar(), zap.InfoLevel)),
		optup.EventStreams(Events(ctx, "Deploying")),
		optup.Refresh(),
	)
	if err != nil {
		prog.Complete("Failed")
		return nil, nil, fmt.Errorf("failed to update stack: %w", err)
	}
	prog.Complete("Success")

	log.Infof("Successfully deployed stack %s", ref.StackName())

	return &upResult, readState(ctx, s, log), nil
}

// readState fetches the exported stack state after a successful operation.
// Failing to read it back is not a deploy failure, so it only logs.
func readState(ctx context.Context, s StackInterface, log *zap.SugaredLogger) *State {
	stackState, err := GetState(ctx, s)
	if err != nil {
		log.Warnf("Error reading exported stack state: %v", err)
		return nil
	}
	return &stackState
}

func RunPreview(ctx context.Context, fs afero.Fs, ref Reference, program pulumi.RunFunc) (*auto.PreviewResult, error) {
	log := logging.GetLogger(ctx).Named("pulumi.preview").Sugar()

	s, err := Initialize(ctx, fs, ref, program)
	if err != nil {
		return nil, err
	}
	log.Debugf("Created/Selected stack %q", ref.StackName())

	err = s.SetConfig(ctx, "aws:region", auto.ConfigValue{Value: ref.AwsRegion})
	if err != nil {
		return nil, fmt.Errorf("failed to set stack configuration: %w", err)
	}

	log.Debug("Starting preview")

	prog := tui.GetProgress(ctx)
	previewResult, err := s.Preview(
		ctx,
		optpreview.ProgressStreams(logging.NewLoggerWriter(log.Desugar(), zap.InfoLevel)),
		optpreview.EventStreams(Events(ctx, "Previewing")),
		optpreview.Refresh(),
	)
	if err != nil {
		prog.Complete("Failed")
		// The first line carries the cause, the rest repeats the live logging
		// already shown.
		firstLine := strings.Split(err.Error(), "\n")[0]
		return nil, fmt.Errorf("failed to preview stack: %s", firstLine)
	}
	prog.Complete("Success")

	log.Infof("Successfully previewed stack %s", ref.StackName())

	return &previewResult, nil
}

func RunDown(ctx context.Context, fs afero.Fs, ref Reference, program pulumi.RunFunc) error {
	log := logging.GetLogger(ctx).Named("pulumi.destroy").Sugar()

	s, err := Initialize(ctx, fs, ref, program)
	if err != nil {
		return err
	}
	log.Debugf("Created/Selected stack %q", ref.StackName())

	err = s.SetConfig(ctx, "aws:region", auto.ConfigValue{Value: ref.AwsRegion})
	if err != nil {
		return fmt.Errorf("failed to set stack configuration: %w", err)
	}

	log.Debug("Starting destroy")

	stdoutStreamer := optdestroy.ProgressStreams(logging.NewLoggerWriter(log.Desugar(), zap.InfoLevel))
	refresh := optdestroy.Refresh()
	eventStream := optdestroy.EventStreams(Events(ctx, "Destroying"))

	prog := tui.GetProgress(ctx)
	_, err = s.Destroy(ctx, stdoutStreamer, eventStream, refresh)
	if err != nil {
		prog.Complete("Failed")
		return fmt.Errorf("failed to destroy stack: %w", err)
	}
	prog.Complete("Success")

	log.Infof("Successfully destroyed stack %s", ref.StackName())

	log.Infof("Removing stack %s", ref.StackName())
	err = s.Workspace().RemoveStack(ctx, ref.StackName())
	if err != nil {
		return fmt.Errorf("failed to remove stack: %w", err)
	}
	return nil
}

// Outputs fetches the current stack outputs from the engine.
func Outputs(ctx context.Context, fs afero.Fs, ref Reference, program pulumi.RunFunc) (map[string]string, error) {
	s, err := Initialize(ctx, fs, ref, program)
	if err != nil {
		return nil, err
	}
	raw, err := s.Outputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stack outputs: %w", err)
	}
	outputs := make(map[string]string, len(raw))
	for key, value := range raw {
		outputs[key] = fmt.Sprint(value.Value)
	}
	return outputs, nil
}
