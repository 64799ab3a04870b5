package orchestrator

import (
	"fmt"
	"time"

	"github.com/poolhall/tablequeue/internal/model"
)

// Action is one of the named operations the orchestrator exposes to the
// conversational/agent layer
type Action string

const (
	ActionJoinQueue         Action = "join_queue"
	ActionLeaveQueue        Action = "leave_queue"
	ActionCheckPosition     Action = "check_position"
	ActionSeeQueue          Action = "see_queue"
	ActionStartGame         Action = "start_game"
	ActionEndMatch          Action = "end_match"
	ActionConfirmChallenger Action = "confirm_challenger"
)

// ParseAction validates an action name from the wire
func ParseAction(name string) (Action, error) {
	switch Action(name) {
	case ActionJoinQueue, ActionLeaveQueue, ActionCheckPosition, ActionSeeQueue,
		ActionStartGame, ActionEndMatch, ActionConfirmChallenger:
		return Action(name), nil
	}
	return "", fmt.Errorf("unknown action %q", name)
}

// Code is the machine-readable outcome of a dispatched action. Negative
// outcomes are normal results, not errors; only store faults and integrity
// violations surface as errors.
type Code string

const (
	CodeOK                Code = "OK"
	CodeAlreadyInQueue    Code = "ALREADY_IN_QUEUE"
	CodeNotInQueue        Code = "NOT_IN_QUEUE"
	CodeGameAlreadyActive Code = "GAME_ALREADY_ACTIVE"
	CodeNoActiveGame      Code = "NO_ACTIVE_GAME"
	CodeNoPendingGame     Code = "NO_PENDING_GAME"
	CodeNotAuthorized     Code = "NOT_AUTHORIZED"
	CodePlayerNotFound    Code = "PLAYER_NOT_FOUND"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
)

// ArrivalDeadline is how long a called-up challenger has to reach the table.
// Enforcing it is the notification layer's job; the core only reports it.
const ArrivalDeadline = 2 * time.Minute

// Notification tells the external notification collaborator who must be
// called to the table and with what deadline
type Notification struct {
	Player   model.Player  `json:"player"`
	Deadline time.Duration `json:"deadline"`
}

// Result is the outcome of a dispatched action: human-readable text for the
// agent layer to relay, plus a structured code it can branch on
type Result struct {
	Code         Code          `json:"code"`
	Text         string        `json:"text"`
	Notification *Notification `json:"notification,omitempty"`
}
