// Package handler exposes the deployment resolution endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"convoy/internal/configuration"
	"convoy/internal/deploy/service"
	"convoy/internal/descriptor"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/platform/middleware/request"
	dErrors "convoy/pkg/domain-errors"
)

// Service runs the deployment resolution flow.
type Service interface {
	ResolveDescriptor(ctx context.Context, desc *descriptor.Descriptor, target configuration.Target, spaceID string) (*service.Resolution, error)
}

// ResolutionRequest asks for a descriptor to be resolved for a target space.
type ResolutionRequest struct {
	Org        string                 `json:"org"`
	Space      string                 `json:"space"`
	SpaceID    string                 `json:"space_id"`
	Descriptor *descriptor.Descriptor `json:"descriptor"`
}

// ResolutionResponse carries the rewritten descriptor and the derived
// subscriptions.
type ResolutionResponse struct {
	Descriptor         *descriptor.Descriptor       `json:"descriptor"`
	Subscriptions      []configuration.Subscription `json:"subscriptions,omitempty"`
	ExpandedProperties []string                     `json:"expanded_properties,omitempty"`
}

// Handler handles deployment endpoints.
type Handler struct {
	deploy Service
	logger *slog.Logger
}

// New creates a new deployment Handler.
func New(deploy Service, logger *slog.Logger) *Handler {
	return &Handler{deploy: deploy, logger: logger}
}

// Register registers the deployment routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/deployments/resolution", h.handleResolve)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[ResolutionRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	if req.Descriptor == nil || req.Descriptor.ID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "descriptor with an id is required"))
		return
	}
	if req.Space == "" || req.SpaceID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "space and space_id are required"))
		return
	}

	target := configuration.Target{Org: req.Org, Space: req.Space}
	resolution, err := h.deploy.ResolveDescriptor(ctx, req.Descriptor, target, req.SpaceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "descriptor resolution failed",
			"request_id", requestID,
			"mta_id", req.Descriptor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ResolutionResponse{
		Descriptor:         resolution.Descriptor,
		Subscriptions:      resolution.Subscriptions,
		ExpandedProperties: resolution.ExpandedProperties,
	})
}
