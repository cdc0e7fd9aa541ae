// Package lifecycle drives deployment process instances on the workflow
// engine: starting them, aborting whole correlated families, re-executing
// stalled jobs, and resuming instances waiting at an activity.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"convoy/internal/engine"
	"convoy/internal/lifecycle/metrics"
	dErrors "convoy/pkg/domain-errors"
	"convoy/pkg/retry"
)

// State is the coarse observable state of a process instance.
type State string

const (
	// StateRunning means the engine holds a healthy job for the instance.
	StateRunning State = "RUNNING"
	// StateError means the instance's job has recorded a failure.
	StateError State = "ERROR"
	// StateActionRequired means the instance has no job and is waiting on an
	// external signal.
	StateActionRequired State = "ACTION_REQUIRED"
)

const (
	defaultAbortTimeout       = 30 * time.Second
	defaultResumePollInterval = 100 * time.Millisecond

	abortReason = "process was aborted"
)

type Option func(*Controller)

// Controller executes lifecycle operations against the workflow engine.
// The engine exclusively owns process state; the controller reads and
// mutates it through the gateway and keeps nothing of its own.
type Controller struct {
	gateway      engine.Gateway
	logger       *slog.Logger
	metrics      *metrics.Metrics
	abortTimeout time.Duration
	pollInterval time.Duration
}

func NewController(gateway engine.Gateway, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		gateway:      gateway,
		logger:       logger,
		abortTimeout: defaultAbortTimeout,
		pollInterval: defaultResumePollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithMetrics sets the metrics instance for the controller.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithAbortTimeout bounds the conflict-retry loop of Abort.
func WithAbortTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.abortTimeout = d
		}
	}
}

// WithResumePollInterval sets the sleep between execution probes in Resume.
func WithResumePollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// Start launches a new instance of the latest deployed version of the given
// definition key, attributed to userID. The caller provides the initial
// variables; the correlation id is set to the new instance's own id so that
// sub-processes spawned later can be found.
func (c *Controller) Start(ctx context.Context, userID, definitionKey string, variables map[string]any) (engine.ProcessInstance, error) {
	var instance engine.ProcessInstance
	err := engine.WithActingUser(c.gateway, userID, func() error {
		def, err := c.gateway.LatestDefinition(ctx, definitionKey)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("resolving definition %q", definitionKey))
		}
		instance, err = c.gateway.StartInstance(ctx, def.ID, variables)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("starting instance of %q", def.ID))
		}
		return nil
	})
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	if err := c.gateway.SetVariable(ctx, instance.ID, engine.VariableCorrelationID, instance.ID); err != nil {
		c.logger.Warn("failed to set correlation id on new instance",
			slog.String("process_id", instance.ID), slog.String("error", err.Error()))
	}

	if c.metrics != nil {
		c.metrics.IncrementProcessesStarted()
	}
	c.logger.Info("process started",
		slog.String("process_id", instance.ID),
		slog.String("definition_key", definitionKey),
		slog.String("user_id", userID))
	return instance, nil
}

// Abort terminates the whole correlated family of the given root process:
// active sub-processes first, the root last, so the root cannot respawn work
// after its children are gone. Each instance gets the cooperative aborted
// flag set before deletion, and both calls are retried on engine conflicts
// until the abort timeout. A persistent conflict past the deadline escalates
// to an abort-timeout error.
func (c *Controller) Abort(ctx context.Context, userID, processID string) error {
	start := time.Now()
	family, err := c.ActiveFamily(ctx, processID)
	if err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.ObserveFamilySize(len(family))
	}

	deadline := start.Add(c.abortTimeout)
	for _, id := range family {
		if err := c.abortInstance(ctx, userID, id, deadline); err != nil {
			return err
		}
	}

	if c.metrics != nil {
		c.metrics.IncrementProcessesAborted()
		c.metrics.ObserveAbortDuration(float64(time.Since(start).Milliseconds()))
	}
	c.logger.Info("process family aborted",
		slog.String("process_id", processID),
		slog.Int("instances", len(family)),
		slog.String("user_id", userID))
	return nil
}

func (c *Controller) abortInstance(ctx context.Context, userID, processID string, deadline time.Time) error {
	err := engine.WithActingUser(c.gateway, userID, func() error {
		return retry.UntilDeadline(ctx, deadline, func() error {
			if err := c.gateway.SetVariable(ctx, processID, engine.VariableAborted, true); err != nil {
				c.noteConflict(err)
				return err
			}
			if err := c.gateway.DeleteInstance(ctx, processID, abortReason); err != nil {
				c.noteConflict(err)
				return err
			}
			return nil
		})
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeTimeout) {
			return dErrors.WrapWithCode(err, dErrors.CodeAbortTimeout,
				fmt.Sprintf("aborting process %q did not finish within %s", processID, c.abortTimeout))
		}
		return err
	}
	return nil
}

func (c *Controller) noteConflict(err error) {
	if c.metrics != nil && dErrors.HasCode(err, dErrors.CodeConflict) {
		c.metrics.IncrementAbortConflicts()
	}
}

// Retry re-executes the stalled job of the given process instance. An
// instance without a current job has nothing to retry; that is not an error,
// the instance is simply waiting on something other than a failed job.
func (c *Controller) Retry(ctx context.Context, userID, processID string) error {
	job, err := c.gateway.FindJob(ctx, processID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("finding job of process %q", processID))
	}
	if job == nil {
		c.logger.Info("no job to retry", slog.String("process_id", processID))
		return nil
	}

	err = engine.WithActingUser(c.gateway, userID, func() error {
		return c.gateway.ExecuteJob(ctx, job.ID)
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("re-executing job %q of process %q", job.ID, processID))
	}

	if c.metrics != nil {
		c.metrics.IncrementProcessesRetried()
	}
	c.logger.Info("job re-executed",
		slog.String("process_id", processID),
		slog.String("job_id", job.ID),
		slog.String("user_id", userID))
	return nil
}

// Resume signals the execution waiting at activityID in the given process.
// The engine positions the execution asynchronously, so Resume polls until
// an execution with a parent shows up there; an execution without a parent
// is the process root passing through, not the wait state. A context
// deadline bounds the poll; without one the abort timeout applies. If the
// activity is never reached before the deadline the error says so
// explicitly.
func (c *Controller) Resume(ctx context.Context, userID, processID, activityID string, variables map[string]any) error {
	deadline := time.Now().Add(c.abortTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	execution, err := retry.PollUntilDeadline(ctx, deadline, c.pollInterval, func() (engine.Execution, bool, error) {
		exec, err := c.gateway.FindExecution(ctx, processID, activityID)
		if err != nil {
			return engine.Execution{}, false, dErrors.Wrap(err, dErrors.CodeInternal,
				fmt.Sprintf("finding execution at %q in process %q", activityID, processID))
		}
		if exec == nil || exec.ParentID == "" {
			return engine.Execution{}, false, nil
		}
		return *exec, true, nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeTimeout) {
			return dErrors.WrapWithCode(err, dErrors.CodeStepNotReached,
				fmt.Sprintf("process %q never reached activity %q", processID, activityID))
		}
		return err
	}

	err = engine.WithActingUser(c.gateway, userID, func() error {
		return c.gateway.Signal(ctx, execution.ID, variables)
	})
	if err != nil {
		c.logger.Error("failed to signal execution",
			slog.String("process_id", processID),
			slog.String("execution_id", execution.ID),
			slog.String("activity_id", activityID),
			slog.String("error", err.Error()))
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("signaling execution %q", execution.ID))
	}

	if c.metrics != nil {
		c.metrics.IncrementProcessesResumed()
	}
	c.logger.Info("process resumed",
		slog.String("process_id", processID),
		slog.String("activity_id", activityID),
		slog.String("user_id", userID))
	return nil
}

// OngoingState derives the instance's state from its current job: no job
// means the instance is waiting for an external action, a job with a
// recorded failure means it is in error, anything else is running.
func (c *Controller) OngoingState(ctx context.Context, processID string) (State, error) {
	job, err := c.gateway.FindJob(ctx, processID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("finding job of process %q", processID))
	}
	switch {
	case job == nil:
		return StateActionRequired, nil
	case job.FailureMessage != "":
		return StateError, nil
	default:
		return StateRunning, nil
	}
}

// ActiveFamily lists the still-active instances correlated with the given
// root process, sub-processes first and the root last. A correlated instance
// counts as active while its history holds no end event.
func (c *Controller) ActiveFamily(ctx context.Context, processID string) ([]string, error) {
	correlated, err := c.gateway.HistoricVariablesByValue(ctx, engine.VariableCorrelationID, processID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("finding sub-processes of %q", processID))
	}

	var family []string
	for _, v := range correlated {
		if v.ProcessInstanceID == processID {
			continue
		}
		active, err := c.isActive(ctx, v.ProcessInstanceID)
		if err != nil {
			return nil, err
		}
		if active {
			family = append(family, v.ProcessInstanceID)
		}
	}
	return append(family, processID), nil
}

func (c *Controller) isActive(ctx context.Context, processID string) (bool, error) {
	ends, err := c.gateway.HistoricActivities(ctx, processID, engine.ActivityTypeEndEvent)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("reading history of process %q", processID))
	}
	return len(ends) == 0, nil
}
