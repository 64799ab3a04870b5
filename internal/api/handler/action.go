package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/poolhall/tablequeue/internal/api/request"
	"github.com/poolhall/tablequeue/internal/api/response"
	"github.com/poolhall/tablequeue/internal/notify"
	"github.com/poolhall/tablequeue/internal/services/orchestrator"
	"github.com/poolhall/tablequeue/internal/services/registry"
)

// ActionHandler dispatches named table actions on behalf of an actor
type ActionHandler struct {
	registry     *registry.Service
	orchestrator *orchestrator.Service
	notifier     notify.Notifier
	logger       *slog.Logger
}

// NewActionHandler creates a new action handler
func NewActionHandler(
	registry *registry.Service,
	orchestrator *orchestrator.Service,
	notifier notify.Notifier,
	logger *slog.Logger,
) *ActionHandler {
	return &ActionHandler{
		registry:     registry,
		orchestrator: orchestrator,
		notifier:     notifier,
		logger:       logger,
	}
}

// Dispatch handles POST /api/v1/actions
func (h *ActionHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req request.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid JSON body"))
		return
	}

	action, err := orchestrator.ParseAction(req.Action)
	if err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	// Resolve the actor's identity before dispatching
	actor, err := h.registry.Lookup(r.Context(), req.Actor)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.orchestrator.Dispatch(r.Context(), actor.Contact, action, req.Args)
	if err != nil {
		WriteError(w, err)
		return
	}

	// Hand any resulting call-to-table to the notification collaborator.
	// Delivery failures don't fail the action; the state change already
	// happened.
	if result.Notification != nil {
		n := result.Notification
		if err := h.notifier.ChallengerUp(r.Context(), n.Player, n.Deadline); err != nil {
			h.logger.Error("challenger notification failed",
				slog.String("contact", string(n.Player.Contact)),
				slog.String("error", err.Error()),
			)
		}
	}

	response.JSON(w, http.StatusOK, response.ActionResultFromModel(result))
}
