package handler

import (
	"errors"
	"net/http"

	"github.com/poolhall/tablequeue/internal/api/response"
	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/services/match"
	"github.com/poolhall/tablequeue/internal/services/queue"
)

// StatusHandler exposes read-only queue and game state. The notification
// layer polls the current game to enforce arrival deadlines.
type StatusHandler struct {
	queue *queue.Controller
	match *match.Controller
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(queue *queue.Controller, match *match.Controller) *StatusHandler {
	return &StatusHandler{queue: queue, match: match}
}

// GetQueue handles GET /api/v1/queue
func (h *StatusHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	players, err := h.queue.Snapshot(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.QueueSnapshotFromModel(players))
}

// GetCurrentGame handles GET /api/v1/games/current.
// The in-progress game wins; otherwise the pending one is returned.
func (h *StatusHandler) GetCurrentGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.match.Active(r.Context())
	if errors.Is(err, model.ErrGameNotFound) {
		game, err = h.match.Pending(r.Context())
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(game))
}
