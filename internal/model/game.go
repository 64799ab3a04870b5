package model

import (
	"time"

	"github.com/google/uuid"
)

// GameID uniquely identifies a game
type GameID string

// NewGameID generates a random game identifier
func NewGameID() GameID {
	return GameID(uuid.NewString())
}

// GameStatus is the lifecycle state of a game
type GameStatus string

const (
	// GameStatusPendingChallenger means a challenger has been pulled from the
	// queue but the king has not yet confirmed their arrival at the table
	GameStatusPendingChallenger GameStatus = "pending_challenger"
	// GameStatusInProgress means the game is live at the table
	GameStatusInProgress GameStatus = "in_progress"
	// GameStatusFinished means the game has concluded
	GameStatusFinished GameStatus = "finished"
)

// Game is a two-party match for the table. At most one game may be
// pending and at most one in progress at any time.
type Game struct {
	ID         GameID     `json:"id" bson:"_id"`
	King       Contact    `json:"king" bson:"king"`
	Challenger Contact    `json:"challenger" bson:"challenger"`
	Status     GameStatus `json:"status" bson:"status"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// HasParticipant reports whether the contact is the king or the challenger
func (g *Game) HasParticipant(contact Contact) bool {
	return g.King == contact || g.Challenger == contact
}

// Opponent returns the other participant. The caller must already have
// checked that contact is a participant.
func (g *Game) Opponent(contact Contact) Contact {
	if g.King == contact {
		return g.Challenger
	}
	return g.King
}
