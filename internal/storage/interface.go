package storage

import (
	"context"
	"time"

	"github.com/poolhall/tablequeue/internal/model"
)

// Storage defines the interface for data persistence.
//
// Queue operations act on a single system-wide queue document and must be
// linearizable with respect to each other: the check-then-act inside
// AppendQueueEntry and PopQueueHead may not interleave with concurrent queue
// writes. Game creation and transitions must be atomic conditional writes so
// the at-most-one pending / at-most-one in-progress invariants hold under
// concurrent callers.
type Storage interface {
	// Player operations
	// CreatePlayer inserts a player record; it fails with
	// model.ErrDuplicateContact if the contact already exists.
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, contact model.Contact) (*model.Player, error)

	// Queue operations
	// EnsureQueue creates the queue document if absent. It fails with
	// model.ErrQueueCorrupted if more than one queue document exists.
	EnsureQueue(ctx context.Context) error
	GetQueue(ctx context.Context) (*model.Queue, error)
	// AppendQueueEntry appends the entry unless its contact is already
	// present. It returns whether the entry was added and the contact's
	// current 1-indexed position either way.
	AppendQueueEntry(ctx context.Context, entry model.QueueEntry) (added bool, position int, err error)
	// RemoveQueueEntry removes the entry for the contact if present
	RemoveQueueEntry(ctx context.Context, contact model.Contact) (removed bool, err error)
	// PopQueueHead removes and returns the head entry, or nil if the queue
	// is empty. Empty is not an error.
	PopQueueHead(ctx context.Context) (*model.QueueEntry, error)
	// PushQueueHead re-inserts an entry at the head of the queue. Used as
	// the compensating action when handing a popped player a game fails.
	PushQueueHead(ctx context.Context, entry model.QueueEntry) error
	// EvictQueueBefore removes every entry joined strictly before cutoff
	// and returns how many were removed
	EvictQueueBefore(ctx context.Context, cutoff time.Time) (removed int, err error)

	// Game operations
	// CreateGame inserts the game only if no pending or in-progress game
	// exists; otherwise it fails with model.ErrGameAlreadyActive.
	CreateGame(ctx context.Context, game *model.Game) error
	// GetGameByStatus returns the unique non-finished game with the given
	// status (pending or in progress), or model.ErrGameNotFound
	GetGameByStatus(ctx context.Context, status model.GameStatus) (*model.Game, error)
	// TransitionGame moves a game from one status to another as a single
	// conditional update; it fails with model.ErrGameNotFound if the game
	// no longer has the expected status. When to is finished, now is
	// recorded as the finish time.
	TransitionGame(ctx context.Context, id model.GameID, from, to model.GameStatus, now time.Time) (*model.Game, error)
	// ArchiveFinishedBefore clears finished games that concluded strictly
	// before cutoff and returns how many were cleared
	ArchiveFinishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}
