package stack

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/apitype"
)

// StackInterface is the subset of auto.Stack the actions use. It exists so
// tests can substitute a canned stack.
type StackInterface interface {
	Up(ctx context.Context, opts ...optup.Option) (auto.UpResult, error)
	Preview(ctx context.Context, opts ...optpreview.Option) (auto.PreviewResult, error)
	Destroy(ctx context.Context, opts ...optdestroy.Option) (auto.DestroyResult, error)
	SetConfig(ctx context.Context, key string, val auto.ConfigValue) error
	Export(ctx context.Context) (apitype.UntypedDeployment, error)
	Outputs(ctx context.Context) (auto.OutputMap, error)
	Workspace() auto.Workspace
}

// State is a read-only view of the engine's deployment state: the exported
// stack outputs plus every resource keyed by its URN.
type State struct {
	Version    int
	Deployment apitype.DeploymentV3
	Outputs    map[string]any
	Resources  map[string]apitype.ResourceV3
}

func GetState(ctx context.Context, stack StackInterface) (State, error) {
	rawState, err := stack.Export(ctx)
	if err != nil {
		return State{}, err
	}

	deployment := apitype.DeploymentV3{}
	err = json.Unmarshal(rawState.Deployment, &deployment)
	if err != nil {
		return State{}, err
	}

	var stackResource apitype.ResourceV3
	foundStackResource := false
	resources := make(map[string]apitype.ResourceV3)
	for _, res := range deployment.Resources {
		if res.Type == "pulumi:pulumi:Stack" {
			stackResource = res
			foundStackResource = true
			continue
		}
		resources[string(res.URN)] = res
	}
	if !foundStackResource {
		return State{}, fmt.Errorf("could not find pulumi:pulumi:Stack resource in state")
	}

	outputs := make(map[string]any, len(stackResource.Outputs))
	for key, value := range stackResource.Outputs {
		outputs[key] = value
	}

	return State{
		Version:    rawState.Version,
		Deployment: deployment,
		Outputs:    outputs,
		Resources:  resources,
	}, nil
}

// StringOutputs returns the stack outputs rendered as strings, dropping any
// non-scalar values.
func (s State) StringOutputs() map[string]string {
	out := make(map[string]string, len(s.Outputs))
	for key, value := range s.Outputs {
		switch v := value.(type) {
		case string:
			out[key] = v
		case bool, int, int64, float64:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}
