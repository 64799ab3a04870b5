package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/poolhall/tablequeue/internal/api/request"
	"github.com/poolhall/tablequeue/internal/api/response"
	"github.com/poolhall/tablequeue/internal/services/registry"
)

// PlayerHandler handles player registration and lookup endpoints
type PlayerHandler struct {
	registry *registry.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(registry *registry.Service) *PlayerHandler {
	return &PlayerHandler{registry: registry}
}

// Register handles POST /api/v1/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid JSON body"))
		return
	}
	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	player, err := h.registry.Register(r.Context(), req.Name, req.Contact)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// Get handles GET /api/v1/players/{contact}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact := mux.Vars(r)["contact"]

	player, err := h.registry.Lookup(r.Context(), contact)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
