// Package model tracks what outpost itself knows about a deployment: its
// status, last recorded stack outputs, and when it last changed. The Pulumi
// engine owns the resource-level state; this file exists so commands like
// `outpost outputs` work without touching the engine.
package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type StateManager struct {
	fs        afero.Fs
	stateFile string
	state     *State
	mutex     sync.Mutex
}

type State struct {
	SchemaVersion int               `yaml:"schema_version,omitempty"`
	Project       string            `yaml:"project,omitempty"`
	Environment   string            `yaml:"environment,omitempty"`
	Region        string            `yaml:"region,omitempty"`
	Status        DeploymentStatus  `yaml:"status,omitempty"`
	Outputs       map[string]string `yaml:"outputs,omitempty"`
	LastUpdated   string            `yaml:"last_updated,omitempty"`
}

func NewStateManager(fs afero.Fs, stateFile string) *StateManager {
	return &StateManager{
		fs:        fs,
		stateFile: stateFile,
		state: &State{
			SchemaVersion: 1,
			Status:        StatusPending,
		},
	}
}

func (sm *StateManager) CheckStateFileExists() bool {
	exists, err := afero.Exists(sm.fs, sm.stateFile)
	return err == nil && exists
}

func (sm *StateManager) InitState(project, environment, region string) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.state.Project = project
	sm.state.Environment = environment
	sm.state.Region = region
	sm.state.Status = StatusPending
	sm.state.LastUpdated = time.Now().Format(time.RFC3339)
}

func (sm *StateManager) LoadState() error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	data, err := afero.ReadFile(sm.fs, sm.stateFile)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, sm.state)
}

func (sm *StateManager) SaveState() error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	data, err := yaml.Marshal(sm.state)
	if err != nil {
		return err
	}
	return afero.WriteFile(sm.fs, sm.stateFile, data, 0644)
}

func (sm *StateManager) GetState() State {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	return *sm.state
}

func (sm *StateManager) Transition(nextStatus DeploymentStatus) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if !isValidTransition(sm.state.Status, nextStatus) {
		return fmt.Errorf("invalid transition from %s to %s", sm.state.Status, nextStatus)
	}

	zap.L().Debug("Transitioning deployment",
		zap.String("from", string(sm.state.Status)),
		zap.String("to", string(nextStatus)))
	sm.state.Status = nextStatus
	sm.state.LastUpdated = time.Now().Format(time.RFC3339)
	return nil
}

// RegisterOutputs records the stack outputs of the last successful operation.
func (sm *StateManager) RegisterOutputs(outputs map[string]string) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if sm.state.Outputs == nil {
		sm.state.Outputs = make(map[string]string, len(outputs))
	}
	for key, value := range outputs {
		sm.state.Outputs[key] = value
	}
}

// ClearOutputs drops recorded outputs, used after the deployment is torn down.
func (sm *StateManager) ClearOutputs() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.state.Outputs = nil
}
