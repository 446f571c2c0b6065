package model

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    DeploymentStatus
		to      DeploymentStatus
		wantErr bool
	}{
		{name: "pending to creating", from: StatusPending, to: StatusCreating},
		{name: "creating to complete", from: StatusCreating, to: StatusCreateComplete},
		{name: "creating to failed", from: StatusCreating, to: StatusCreateFailed},
		{name: "complete to updating", from: StatusCreateComplete, to: StatusUpdating},
		{name: "complete to deleting", from: StatusCreateComplete, to: StatusDeleting},
		{name: "failed create retried", from: StatusCreateFailed, to: StatusCreating},
		{name: "deleting to deleted", from: StatusDeleting, to: StatusDeleteComplete},
		{name: "deleted back to creating", from: StatusDeleteComplete, to: StatusCreating},
		{name: "pending straight to complete", from: StatusPending, to: StatusCreateComplete, wantErr: true},
		{name: "complete to creating", from: StatusCreateComplete, to: StatusCreating, wantErr: true},
		{name: "deleting to updating", from: StatusDeleting, to: StatusUpdating, wantErr: true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateManager(afero.NewMemMapFs(), "state.yaml")
			sm.state.Status = tt.from

			err := sm.Transition(tt.to)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid transition")
				assert.Equal(t, tt.from, sm.GetState().Status)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, sm.GetState().Status)
			}
		})
	}
}

func TestNextStatus(t *testing.T) {
	cases := []struct {
		current  DeploymentStatus
		result   string
		expected DeploymentStatus
	}{
		{StatusCreating, "succeeded", StatusCreateComplete},
		{StatusCreating, "failed", StatusCreateFailed},
		{StatusUpdating, "succeeded", StatusUpdateComplete},
		{StatusUpdating, "failed", StatusUpdateFailed},
		{StatusDeleting, "succeeded", StatusDeleteComplete},
		{StatusDeleting, "failed", StatusDeleteFailed},
		{StatusPending, "succeeded", StatusUnknown},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.expected, NextStatus(tt.current, tt.result),
			"NextStatus(%s, %s)", tt.current, tt.result)
	}
}

func TestInFlightStatus(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(StatusCreating, InFlightStatus(""))
	assert.Equal(StatusCreating, InFlightStatus(StatusPending))
	assert.Equal(StatusCreating, InFlightStatus(StatusCreateFailed))
	assert.Equal(StatusCreating, InFlightStatus(StatusDeleteComplete))
	assert.Equal(StatusUpdating, InFlightStatus(StatusCreateComplete))
	assert.Equal(StatusUpdating, InFlightStatus(StatusUpdateFailed))
}

func TestSaveLoadRoundtrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := afero.NewMemMapFs()
	sm := NewStateManager(fs, "state.yaml")
	assert.False(sm.CheckStateFileExists())

	sm.InitState("outpost", "dev", "us-east-1")
	require.NoError(sm.Transition(StatusCreating))
	require.NoError(sm.Transition(StatusCreateComplete))
	sm.RegisterOutputs(map[string]string{
		"instance_public_ip": "54.1.2.3",
		"ssh_command":        "ssh -i ./id_rsa_pulumi ubuntu@54.1.2.3",
	})
	require.NoError(sm.SaveState())
	assert.True(sm.CheckStateFileExists())

	loaded := NewStateManager(fs, "state.yaml")
	require.NoError(loaded.LoadState())

	st := loaded.GetState()
	assert.Equal("outpost", st.Project)
	assert.Equal("dev", st.Environment)
	assert.Equal("us-east-1", st.Region)
	assert.Equal(StatusCreateComplete, st.Status)
	assert.Equal("54.1.2.3", st.Outputs["instance_public_ip"])
	assert.NotEmpty(st.LastUpdated)
}

func TestClearOutputs(t *testing.T) {
	sm := NewStateManager(afero.NewMemMapFs(), "state.yaml")
	sm.RegisterOutputs(map[string]string{"instance_public_ip": "1.2.3.4"})
	sm.ClearOutputs()
	assert.Empty(t, sm.GetState().Outputs)
}
