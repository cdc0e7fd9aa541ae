package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"convoy/internal/lifecycle/metrics"
	dErrors "convoy/pkg/domain-errors"
)

// Action identifiers accepted by the dispatcher. Matching is
// case-insensitive on input; these are the canonical forms.
const (
	ActionAbort  = "abort"
	ActionRetry  = "retry"
	ActionResume = "resume"
)

// DefaultResumeActivity is the wait-state activity a resume targets unless
// the dispatcher is configured otherwise.
const DefaultResumeActivity = "waitForChanges"

// Action is a named operation applicable to an ongoing process instance.
type Action interface {
	ID() string
	Execute(ctx context.Context, userID, processID string) error
}

type DispatcherOption func(*Dispatcher)

// Dispatcher maps action identifiers to lifecycle operations and knows which
// actions apply in which process state.
type Dispatcher struct {
	controller     *Controller
	logger         *slog.Logger
	metrics        *metrics.Metrics
	resumeActivity string
	actions        map[string]Action
}

func NewDispatcher(controller *Controller, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		controller:     controller,
		logger:         logger,
		resumeActivity: DefaultResumeActivity,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.actions = map[string]Action{
		ActionAbort:  &abortAction{controller: controller},
		ActionRetry:  &retryAction{controller: controller},
		ActionResume: &resumeAction{controller: controller, activityID: d.resumeActivity},
	}
	return d
}

// WithDispatcherMetrics sets the metrics instance for the dispatcher.
func WithDispatcherMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithResumeActivity overrides the activity a resume action signals.
func WithResumeActivity(activityID string) DispatcherOption {
	return func(d *Dispatcher) {
		if activityID != "" {
			d.resumeActivity = activityID
		}
	}
}

// Dispatch executes the named action against the process on behalf of the
// user. Unknown action identifiers are rejected, not ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, processID, actionID string) error {
	action, ok := d.actions[strings.ToLower(actionID)]
	if !ok {
		return dErrors.New(dErrors.CodeUnsupportedAction, fmt.Sprintf("action %q is not supported", actionID))
	}

	d.logger.Info("dispatching action",
		slog.String("action", action.ID()),
		slog.String("process_id", processID),
		slog.String("user_id", userID))

	if err := action.Execute(ctx, userID, processID); err != nil {
		if d.metrics != nil {
			d.metrics.IncrementActionFailures(action.ID())
		}
		return err
	}
	return nil
}

// AvailableActions lists the actions applicable to a process in the given
// state. Abort applies everywhere; retry only to failed instances; resume
// only to instances waiting on an external action.
func (d *Dispatcher) AvailableActions(state State) []string {
	switch state {
	case StateError:
		return []string{ActionAbort, ActionRetry}
	case StateActionRequired:
		return []string{ActionAbort, ActionResume}
	default:
		return []string{ActionAbort}
	}
}

type abortAction struct {
	controller *Controller
}

func (a *abortAction) ID() string { return ActionAbort }

func (a *abortAction) Execute(ctx context.Context, userID, processID string) error {
	return a.controller.Abort(ctx, userID, processID)
}

// retryAction re-executes stalled jobs across the whole correlated family,
// concurrently per instance. Sub-processes fail independently of the root,
// so each gets its own retry.
type retryAction struct {
	controller *Controller
}

func (a *retryAction) ID() string { return ActionRetry }

func (a *retryAction) Execute(ctx context.Context, userID, processID string) error {
	family, err := a.controller.ActiveFamily(ctx, processID)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range family {
		id := id
		g.Go(func() error {
			return a.controller.Retry(gctx, userID, id)
		})
	}
	return g.Wait()
}

type resumeAction struct {
	controller *Controller
	activityID string
}

func (a *resumeAction) ID() string { return ActionResume }

func (a *resumeAction) Execute(ctx context.Context, userID, processID string) error {
	return a.controller.Resume(ctx, userID, processID, a.activityID, map[string]any{"resumed": true})
}
