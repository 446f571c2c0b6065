package stack

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/common/apitype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Mock stack that embeds auto.Stack and overrides the Export method
type mockStack struct {
	auto.Stack
	rawState apitype.UntypedDeployment
	err      error
	outputs  auto.OutputMap
}

func (m *mockStack) Export(ctx context.Context) (apitype.UntypedDeployment, error) {
	return m.rawState, m.err
}

func (m *mockStack) Outputs(ctx context.Context) (auto.OutputMap, error) {
	return m.outputs, nil
}

func TestGetState(t *testing.T) {
	tests := []struct {
		name          string
		rawState      apitype.UntypedDeployment
		err           error
		expectedError string
		check         func(*testing.T, State)
	}{
		{
			name: "empty stack",
			rawState: apitype.UntypedDeployment{
				Version:    3,
				Deployment: json.RawMessage(`{"resources": [{"type": "pulumi:pulumi:Stack", "urn": "urn:pulumi:dev::outpost::pulumi:pulumi:Stack::outpost-dev", "outputs": {}}]}`),
			},
			check: func(t *testing.T, s State) {
				assert.Equal(t, 3, s.Version)
				assert.Empty(t, s.Outputs)
				assert.Empty(t, s.Resources)
			},
		},
		{
			name: "outputs and resources",
			rawState: apitype.UntypedDeployment{
				Version: 3,
				Deployment: json.RawMessage(`{"resources": [
					{"type": "pulumi:pulumi:Stack", "urn": "urn:pulumi:dev::outpost::pulumi:pulumi:Stack::outpost-dev",
					 "outputs": {"instance_public_ip": "54.1.2.3", "ssh_command": "ssh -i ./id_rsa_pulumi ubuntu@54.1.2.3"}},
					{"type": "aws:ec2/vpc:Vpc", "urn": "urn:pulumi:dev::outpost::aws:ec2/vpc:Vpc::my-vpc"},
					{"type": "aws:ec2/instance:Instance", "urn": "urn:pulumi:dev::outpost::aws:ec2/instance:Instance::my-instance"}
				]}`),
			},
			check: func(t *testing.T, s State) {
				assert.Equal(t, "54.1.2.3", s.Outputs["instance_public_ip"])
				assert.Len(t, s.Resources, 2)
				assert.Contains(t, s.Resources, "urn:pulumi:dev::outpost::aws:ec2/vpc:Vpc::my-vpc")
				assert.Equal(t, map[string]string{
					"instance_public_ip": "54.1.2.3",
					"ssh_command":        "ssh -i ./id_rsa_pulumi ubuntu@54.1.2.3",
				}, s.StringOutputs())
			},
		},
		{
			name: "missing stack resource",
			rawState: apitype.UntypedDeployment{
				Version:    3,
				Deployment: json.RawMessage(`{"resources": [{"type": "aws:ec2/vpc:Vpc", "urn": "urn:pulumi:dev::outpost::aws:ec2/vpc:Vpc::my-vpc"}]}`),
			},
			expectedError: "could not find pulumi:pulumi:Stack resource in state",
		},
		{
			name: "invalid deployment json",
			rawState: apitype.UntypedDeployment{
				Version:    3,
				Deployment: json.RawMessage(`{"resources": "nope"}`),
			},
			expectedError: "cannot unmarshal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := GetState(context.Background(), &mockStack{rawState: tt.rawState, err: tt.err})
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestReadStateToleratesExportFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core).Sugar()

	got := readState(context.Background(), &mockStack{err: errors.New("backend gone")}, log)
	assert.Nil(t, got)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "backend gone")
}

func TestReadStateReturnsState(t *testing.T) {
	s := &mockStack{rawState: apitype.UntypedDeployment{
		Version:    3,
		Deployment: json.RawMessage(`{"resources": [{"type": "pulumi:pulumi:Stack", "urn": "urn:pulumi:dev::outpost::pulumi:pulumi:Stack::outpost-dev", "outputs": {"instance_public_ip": "54.1.2.3"}}]}`),
	}}

	got := readState(context.Background(), s, zap.NewNop().Sugar())
	require.NotNil(t, got)
	assert.Equal(t, "54.1.2.3", got.Outputs["instance_public_ip"])
}

func TestStringOutputsDropsNonScalars(t *testing.T) {
	s := State{Outputs: map[string]any{
		"instance_public_ip": "54.1.2.3",
		"count":              float64(2),
		"nested":             map[string]any{"a": "b"},
	}}
	assert.Equal(t, map[string]string{
		"instance_public_ip": "54.1.2.3",
		"count":              "2",
	}, s.StringOutputs())
}
