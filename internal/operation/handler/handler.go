// Package handler exposes the operator surface for process lifecycle
// operations: starting deployments and acting on ongoing ones.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"convoy/internal/engine"
	"convoy/internal/lifecycle"
	dErrors "convoy/pkg/domain-errors"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/platform/middleware/auth"
	"convoy/pkg/platform/middleware/request"
)

// Lifecycle drives process instances on the workflow engine.
type Lifecycle interface {
	Start(ctx context.Context, userID, definitionKey string, variables map[string]any) (engine.ProcessInstance, error)
	OngoingState(ctx context.Context, processID string) (lifecycle.State, error)
}

// ActionDispatcher executes operator actions against ongoing processes.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, userID, processID, actionID string) error
	AvailableActions(state lifecycle.State) []string
}

// StartRequest asks for a new process instance.
type StartRequest struct {
	DefinitionKey string         `json:"definition_key"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// StartResponse reports the started instance.
type StartResponse struct {
	ProcessID    string `json:"process_id"`
	DefinitionID string `json:"definition_id"`
}

// StateResponse reports the observable state of a process instance.
type StateResponse struct {
	ProcessID string          `json:"process_id"`
	State     lifecycle.State `json:"state"`
}

// ActionsResponse lists the actions applicable to a process instance.
type ActionsResponse struct {
	ProcessID string          `json:"process_id"`
	State     lifecycle.State `json:"state"`
	Actions   []string        `json:"actions"`
}

// ActionResponse acknowledges a dispatched action.
type ActionResponse struct {
	ProcessID string `json:"process_id"`
	Action    string `json:"action"`
}

// Handler handles operation endpoints.
type Handler struct {
	lifecycle Lifecycle
	actions   ActionDispatcher
	logger    *slog.Logger
}

// New creates a new operation Handler.
func New(lc Lifecycle, actions ActionDispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		lifecycle: lc,
		actions:   actions,
		logger:    logger,
	}
}

// Register registers the operation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/operations", h.handleStart)
	r.Get("/operations/{processID}/state", h.handleState)
	r.Get("/operations/{processID}/actions", h.handleActions)
	r.Post("/operations/{processID}/actions/{actionID}", h.handleExecuteAction)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	userID, ok := h.operator(ctx, w, requestID)
	if !ok {
		return
	}

	req, ok := httputil.DecodeJSON[StartRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	if req.DefinitionKey == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "definition_key is required"))
		return
	}

	instance, err := h.lifecycle.Start(ctx, userID, req.DefinitionKey, req.Variables)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start process",
			"request_id", requestID,
			"definition_key", req.DefinitionKey,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, StartResponse{
		ProcessID:    instance.ID,
		DefinitionID: instance.DefinitionID,
	})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	processID := chi.URLParam(r, "processID")

	state, err := h.lifecycle.OngoingState(ctx, processID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read process state",
			"request_id", request.GetRequestID(ctx),
			"process_id", processID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, StateResponse{ProcessID: processID, State: state})
}

func (h *Handler) handleActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	processID := chi.URLParam(r, "processID")

	state, err := h.lifecycle.OngoingState(ctx, processID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read process state",
			"request_id", request.GetRequestID(ctx),
			"process_id", processID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ActionsResponse{
		ProcessID: processID,
		State:     state,
		Actions:   h.actions.AvailableActions(state),
	})
}

func (h *Handler) handleExecuteAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	processID := chi.URLParam(r, "processID")
	actionID := chi.URLParam(r, "actionID")

	userID, ok := h.operator(ctx, w, requestID)
	if !ok {
		return
	}

	if err := h.actions.Dispatch(ctx, userID, processID, actionID); err != nil {
		h.logger.ErrorContext(ctx, "action failed",
			"request_id", requestID,
			"process_id", processID,
			"action", actionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, ActionResponse{ProcessID: processID, Action: actionID})
}

func (h *Handler) operator(ctx context.Context, w http.ResponseWriter, requestID string) (string, bool) {
	userID := auth.UserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return userID, true
}
