package response

import (
	"time"

	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/services/orchestrator"
)

// Player is the API representation of a player
type Player struct {
	Contact   string    `json:"contact"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFromModel converts a model player to its API representation
func PlayerFromModel(p *model.Player) Player {
	return Player{
		Contact:   string(p.Contact),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

// QueueSnapshot is the ordered list of waiting players
type QueueSnapshot struct {
	Players []Player `json:"players"`
}

// QueueSnapshotFromModel converts a resolved queue snapshot
func QueueSnapshotFromModel(players []model.Player) QueueSnapshot {
	out := QueueSnapshot{Players: make([]Player, 0, len(players))}
	for i := range players {
		out.Players = append(out.Players, PlayerFromModel(&players[i]))
	}
	return out
}

// Game is the API representation of a game
type Game struct {
	ID         string     `json:"id"`
	King       string     `json:"king"`
	Challenger string     `json:"challenger"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// GameFromModel converts a model game to its API representation
func GameFromModel(g *model.Game) Game {
	return Game{
		ID:         string(g.ID),
		King:       string(g.King),
		Challenger: string(g.Challenger),
		Status:     string(g.Status),
		CreatedAt:  g.CreatedAt,
		FinishedAt: g.FinishedAt,
	}
}

// ActionResult is the outcome of a dispatched action
type ActionResult struct {
	Code         string        `json:"code"`
	Text         string        `json:"text"`
	Notification *Notification `json:"notification,omitempty"`
}

// Notification describes who must be called to the table
type Notification struct {
	Player          Player `json:"player"`
	DeadlineSeconds int    `json:"deadline_seconds"`
}

// ActionResultFromModel converts an orchestrator result
func ActionResultFromModel(r orchestrator.Result) ActionResult {
	out := ActionResult{
		Code: string(r.Code),
		Text: r.Text,
	}
	if r.Notification != nil {
		out.Notification = &Notification{
			Player:          PlayerFromModel(&r.Notification.Player),
			DeadlineSeconds: int(r.Notification.Deadline / time.Second),
		}
	}
	return out
}
