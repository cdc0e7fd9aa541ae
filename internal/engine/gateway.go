// Package engine defines the narrow port the orchestrator needs from the
// external long-running workflow engine. The engine exclusively owns process,
// job, and execution state; the orchestrator never mirrors it beyond a single
// call in progress.
package engine

//go:generate mockgen -source=gateway.go -destination=../lifecycle/mocks/mocks.go -package=mocks Gateway

import (
	"context"
	"time"
)

// Well-known variable names and activity types on the engine.
const (
	// VariableCorrelationID links a parent process to its dynamically
	// spawned sub-processes.
	VariableCorrelationID = "correlationId"

	// VariableAborted is the cooperative abort signal. In-flight steps
	// observe it and exit; it is best-effort and does not itself stop
	// anything.
	VariableAborted = "aborted"

	// ActivityTypeEndEvent marks the end activity of a process. A historic
	// process without one has not finished.
	ActivityTypeEndEvent = "endEvent"
)

// Definition is a deployed process definition version.
type Definition struct {
	ID      string
	Key     string
	Version int
}

// ProcessInstance is a running workflow instance.
type ProcessInstance struct {
	ID           string
	DefinitionID string
}

// Job is the unit of work currently scheduled on a process instance.
// A non-empty FailureMessage means the job is stalled.
type Job struct {
	ID                string
	ProcessInstanceID string
	FailureMessage    string
}

// Execution is one concurrent execution thread of a process instance,
// positioned at an activity. The root execution has an empty ParentID.
type Execution struct {
	ID                string
	ProcessInstanceID string
	ParentID          string
	ActivityID        string
}

// HistoricActivity is an activity instance recorded by the engine's history.
type HistoricActivity struct {
	ID                string
	ProcessInstanceID string
	ActivityID        string
	ActivityType      string
	StartTime         time.Time
}

// HistoricVariable is a variable value recorded by the engine's history.
type HistoricVariable struct {
	ProcessInstanceID string
	Name              string
	Value             any
}

// Gateway is the port to the workflow engine.
//
// Mutating calls that must be attributed to an operator happen inside
// WithActingUser. DeleteInstance and SetVariable may fail with a
// domain-errors CodeConflict error when the engine detects an
// optimistic-concurrency conflict; callers retry those via pkg/retry.
type Gateway interface {
	// SetActingUser attributes subsequent calls to the given user.
	// An empty id clears the attribution.
	SetActingUser(userID string)

	// LatestDefinition resolves the most recently deployed version of a
	// process definition key.
	LatestDefinition(ctx context.Context, definitionKey string) (Definition, error)

	// StartInstance starts a new instance of the given definition.
	StartInstance(ctx context.Context, definitionID string, variables map[string]any) (ProcessInstance, error)

	SetVariable(ctx context.Context, processID, name string, value any) error
	SetVariables(ctx context.Context, processID string, variables map[string]any) error

	// DeleteInstance terminates a process instance with a reason string.
	// Deleting an instance that no longer exists is a no-op.
	DeleteInstance(ctx context.Context, processID, reason string) error

	// FindJob returns the single job currently attached to the process, or
	// nil when the process is waiting on an external signal.
	FindJob(ctx context.Context, processID string) (*Job, error)
	ExecuteJob(ctx context.Context, jobID string) error

	// FindExecution returns the execution currently positioned at the given
	// activity within the process, or nil if none is there yet.
	FindExecution(ctx context.Context, processID, activityID string) (*Execution, error)
	Signal(ctx context.Context, executionID string, variables map[string]any) error

	// HistoricActivities lists historic activity instances of a process,
	// optionally narrowed to an activity type, ordered by start time.
	HistoricActivities(ctx context.Context, processID, activityType string) ([]HistoricActivity, error)

	// HistoricVariablesByValue lists historic variables with the given
	// name and value across all processes. Used to find correlated
	// sub-processes.
	HistoricVariablesByValue(ctx context.Context, name string, value any) ([]HistoricVariable, error)

	// HistoricVariable returns a process variable from history, or nil.
	HistoricVariable(ctx context.Context, processID, name string) (*HistoricVariable, error)
}
