// Package memory provides an in-memory workflow engine for the demo
// environment and for tests. It implements the engine.Gateway port with
// scripted hooks to place jobs and executions and to inject
// optimistic-concurrency conflicts.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"convoy/internal/engine"
	dErrors "convoy/pkg/domain-errors"
)

type process struct {
	instance           engine.ProcessInstance
	variables          map[string]any
	historicVariables  map[string]any
	job                *engine.Job
	executions         []engine.Execution
	historicActivities []engine.HistoricActivity
	deleted            bool
}

// Engine stores processes in memory.
type Engine struct {
	mu          sync.RWMutex
	definitions map[string][]engine.Definition
	processes   map[string]*process
	// conflicts holds the number of injected optimistic-locking conflicts
	// remaining per process id, consumed by mutating calls.
	conflicts  map[string]int
	actingUser string
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{
		definitions: make(map[string][]engine.Definition),
		processes:   make(map[string]*process),
		conflicts:   make(map[string]int),
	}
}

// Deploy registers a new version of a process definition and returns it.
func (e *Engine) Deploy(definitionKey string) engine.Definition {
	e.mu.Lock()
	defer e.mu.Unlock()
	version := len(e.definitions[definitionKey]) + 1
	def := engine.Definition{
		ID:      fmt.Sprintf("%s:%d", definitionKey, version),
		Key:     definitionKey,
		Version: version,
	}
	e.definitions[definitionKey] = append(e.definitions[definitionKey], def)
	return def
}

func (e *Engine) SetActingUser(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actingUser = userID
}

// ActingUser returns the currently set acting user. Test hook.
func (e *Engine) ActingUser() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.actingUser
}

func (e *Engine) LatestDefinition(_ context.Context, definitionKey string) (engine.Definition, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	versions := e.definitions[definitionKey]
	if len(versions) == 0 {
		return engine.Definition{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no deployed definition for key %q", definitionKey))
	}
	return versions[len(versions)-1], nil
}

func (e *Engine) StartInstance(_ context.Context, definitionID string, variables map[string]any) (engine.ProcessInstance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := &process{
		instance: engine.ProcessInstance{
			ID:           uuid.New().String(),
			DefinitionID: definitionID,
		},
		variables:         make(map[string]any, len(variables)),
		historicVariables: make(map[string]any, len(variables)),
	}
	for k, v := range variables {
		p.variables[k] = v
		p.historicVariables[k] = v
	}
	// A freshly started instance has work scheduled.
	p.job = &engine.Job{ID: uuid.New().String(), ProcessInstanceID: p.instance.ID}
	e.processes[p.instance.ID] = p
	return p.instance, nil
}

func (e *Engine) SetVariable(_ context.Context, processID, name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.consumeConflict(processID); err != nil {
		return err
	}
	p, ok := e.processes[processID]
	if !ok || p.deleted {
		// Nothing left to mutate; treat as already gone.
		return nil
	}
	p.variables[name] = value
	p.historicVariables[name] = value
	return nil
}

func (e *Engine) SetVariables(ctx context.Context, processID string, variables map[string]any) error {
	for k, v := range variables {
		if err := e.SetVariable(ctx, processID, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) DeleteInstance(_ context.Context, processID, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.consumeConflict(processID); err != nil {
		return err
	}
	p, ok := e.processes[processID]
	if !ok || p.deleted {
		return nil
	}
	p.deleted = true
	p.job = nil
	p.executions = nil
	p.historicActivities = append(p.historicActivities, engine.HistoricActivity{
		ID:                uuid.New().String(),
		ProcessInstanceID: processID,
		ActivityID:        reason,
		ActivityType:      engine.ActivityTypeEndEvent,
		StartTime:         time.Now(),
	})
	return nil
}

func (e *Engine) FindJob(_ context.Context, processID string) (*engine.Job, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.processes[processID]
	if !ok || p.job == nil {
		return nil, nil
	}
	job := *p.job
	return &job, nil
}

func (e *Engine) ExecuteJob(_ context.Context, jobID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.processes {
		if p.job != nil && p.job.ID == jobID {
			// Re-execution clears the recorded failure.
			p.job.FailureMessage = ""
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no job with id %q", jobID))
}

func (e *Engine) FindExecution(_ context.Context, processID, activityID string) (*engine.Execution, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.processes[processID]
	if !ok {
		return nil, nil
	}
	for _, exec := range p.executions {
		if exec.ActivityID == activityID {
			found := exec
			return &found, nil
		}
	}
	return nil, nil
}

func (e *Engine) Signal(_ context.Context, executionID string, variables map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.processes {
		for i, exec := range p.executions {
			if exec.ID != executionID {
				continue
			}
			// The signaled execution moves past its wait state.
			p.executions = append(p.executions[:i], p.executions[i+1:]...)
			for k, v := range variables {
				p.variables[k] = v
				p.historicVariables[k] = v
			}
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no execution with id %q", executionID))
}

func (e *Engine) HistoricActivities(_ context.Context, processID, activityType string) ([]engine.HistoricActivity, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.processes[processID]
	if !ok {
		return nil, nil
	}
	var result []engine.HistoricActivity
	for _, a := range p.historicActivities {
		if activityType == "" || a.ActivityType == activityType {
			result = append(result, a)
		}
	}
	return result, nil
}

func (e *Engine) HistoricVariablesByValue(_ context.Context, name string, value any) ([]engine.HistoricVariable, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var result []engine.HistoricVariable
	for id, p := range e.processes {
		if v, ok := p.historicVariables[name]; ok && reflect.DeepEqual(v, value) {
			result = append(result, engine.HistoricVariable{
				ProcessInstanceID: id,
				Name:              name,
				Value:             v,
			})
		}
	}
	return result, nil
}

func (e *Engine) HistoricVariable(_ context.Context, processID, name string) (*engine.HistoricVariable, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.processes[processID]
	if !ok {
		return nil, nil
	}
	v, ok := p.historicVariables[name]
	if !ok {
		return nil, nil
	}
	return &engine.HistoricVariable{ProcessInstanceID: processID, Name: name, Value: v}, nil
}

// PlaceJob sets the process's current job, optionally stalled with a failure
// message. Test and demo hook standing in for engine step scheduling.
func (e *Engine) PlaceJob(processID, failureMessage string) *engine.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.processes[processID]
	if !ok {
		return nil
	}
	p.job = &engine.Job{ID: uuid.New().String(), ProcessInstanceID: processID, FailureMessage: failureMessage}
	job := *p.job
	return &job
}

// ClearJob removes the process's current job, leaving it waiting on an
// external signal.
func (e *Engine) ClearJob(processID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.processes[processID]; ok {
		p.job = nil
	}
}

// PlaceExecution positions an execution at an activity within the process.
func (e *Engine) PlaceExecution(processID, activityID, parentID string) engine.Execution {
	e.mu.Lock()
	defer e.mu.Unlock()
	exec := engine.Execution{
		ID:                uuid.New().String(),
		ProcessInstanceID: processID,
		ParentID:          parentID,
		ActivityID:        activityID,
	}
	if p, ok := e.processes[processID]; ok {
		p.executions = append(p.executions, exec)
	}
	return exec
}

// End records normal completion of a process.
func (e *Engine) End(processID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.processes[processID]
	if !ok {
		return
	}
	p.job = nil
	p.executions = nil
	p.historicActivities = append(p.historicActivities, engine.HistoricActivity{
		ID:                uuid.New().String(),
		ProcessInstanceID: processID,
		ActivityType:      engine.ActivityTypeEndEvent,
		StartTime:         time.Now(),
	})
}

// InjectConflicts makes the next n mutating calls against the process fail
// with an optimistic-concurrency conflict.
func (e *Engine) InjectConflicts(processID string, n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conflicts[processID] = n
}

// Variable returns the current value of a process variable. Test hook.
func (e *Engine) Variable(processID, name string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.processes[processID]
	if !ok {
		return nil, false
	}
	v, ok := p.variables[name]
	return v, ok
}

// Deleted reports whether the process instance was deleted. Test hook.
func (e *Engine) Deleted(processID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.processes[processID]
	return ok && p.deleted
}

func (e *Engine) consumeConflict(processID string) error {
	if n := e.conflicts[processID]; n > 0 {
		e.conflicts[processID] = n - 1
		return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("process %q was updated concurrently", processID))
	}
	return nil
}
