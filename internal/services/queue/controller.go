package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poolhall/tablequeue/internal/dependencies/clock"
	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/storage"
)

// Config holds configuration for the wait queue
type Config struct {
	// CutoffHour is the local hour of day at which yesterday's queue stops
	// carrying over; entries joined before the most recent cutoff boundary
	// are stale
	CutoffHour int
}

// DefaultConfig returns the default queue configuration
func DefaultConfig() Config {
	return Config{
		CutoffHour: 4,
	}
}

// Controller manages the single system-wide waiting line
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// NewController creates a new queue controller
func NewController(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
	}
}

// JoinResult reports the outcome of a join
type JoinResult struct {
	// Added is false when the contact was already waiting; joining twice is
	// a no-op apart from reporting the current position
	Added    bool
	Position int
}

// Join appends the contact to the tail of the queue
func (c *Controller) Join(ctx context.Context, contact model.Contact) (JoinResult, error) {
	entry := model.QueueEntry{
		Contact:  contact,
		JoinedAt: c.clock.Now(),
	}

	added, position, err := c.storage.AppendQueueEntry(ctx, entry)
	if err != nil {
		return JoinResult{}, err
	}
	return JoinResult{Added: added, Position: position}, nil
}

// Leave removes the contact from the queue; false if it was not waiting
func (c *Controller) Leave(ctx context.Context, contact model.Contact) (bool, error) {
	return c.storage.RemoveQueueEntry(ctx, contact)
}

// Position returns the contact's 1-indexed position, or false if not waiting.
// Absence is an expected outcome, not an error.
func (c *Controller) Position(ctx context.Context, contact model.Contact) (int, bool, error) {
	q, err := c.storage.GetQueue(ctx)
	if err != nil {
		return 0, false, err
	}
	pos, ok := q.Position(contact)
	return pos, ok, nil
}

// Snapshot resolves every waiting entry to its player record, in queue order.
// A queue entry whose contact has no player record is a fatal inconsistency.
func (c *Controller) Snapshot(ctx context.Context) ([]model.Player, error) {
	q, err := c.storage.GetQueue(ctx)
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(q.Entries))
	for _, e := range q.Entries {
		p, err := c.storage.GetPlayer(ctx, e.Contact)
		if err != nil {
			if errors.Is(err, model.ErrPlayerNotFound) {
				c.logger.Error("queue entry references unregistered contact",
					slog.String("contact", string(e.Contact)),
				)
				return nil, fmt.Errorf("%w: queue entry %s has no player record", model.ErrDataIntegrity, e.Contact)
			}
			return nil, err
		}
		players = append(players, *p)
	}
	return players, nil
}

// Popped is a head entry removed from the queue along with its resolved
// player. The entry is kept so callers can restore it on a failed hand-off.
type Popped struct {
	Player model.Player
	Entry  model.QueueEntry
}

// PopNext removes and returns the head of the queue, or nil if the queue is
// empty. If the popped entry's player record is missing, the entry is put
// back and a data integrity failure is surfaced.
func (c *Controller) PopNext(ctx context.Context) (*Popped, error) {
	entry, err := c.storage.PopQueueHead(ctx)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	p, err := c.storage.GetPlayer(ctx, entry.Contact)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			c.logger.Error("popped queue entry references unregistered contact",
				slog.String("contact", string(entry.Contact)),
			)
			if restoreErr := c.storage.PushQueueHead(ctx, *entry); restoreErr != nil {
				c.logger.Error("failed to restore popped entry",
					slog.String("contact", string(entry.Contact)),
					slog.String("error", restoreErr.Error()),
				)
			}
			return nil, fmt.Errorf("%w: queue entry %s has no player record", model.ErrDataIntegrity, entry.Contact)
		}
		return nil, err
	}

	return &Popped{Player: *p, Entry: *entry}, nil
}

// Restore re-inserts a previously popped entry at the head of the queue.
// This is the compensating action for a failed hand-off to a new game.
func (c *Controller) Restore(ctx context.Context, entry model.QueueEntry) error {
	return c.storage.PushQueueHead(ctx, entry)
}

// Cutoff returns the most recent daily cutoff boundary at or before now
func (c *Controller) Cutoff() time.Time {
	return cutoffBoundary(c.clock.Now(), c.cfg.CutoffHour)
}

// EvictStale removes every entry joined strictly before the current cutoff
// boundary, so yesterday's queue does not carry over
func (c *Controller) EvictStale(ctx context.Context) (int, error) {
	removed, err := c.storage.EvictQueueBefore(ctx, c.Cutoff())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		c.logger.Info("evicted stale queue entries", slog.Int("removed", removed))
	}
	return removed, nil
}

// cutoffBoundary returns the most recent instant at the cutoff hour that is
// not after now
func cutoffBoundary(now time.Time, hour int) time.Time {
	boundary := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if boundary.After(now) {
		boundary = boundary.AddDate(0, 0, -1)
	}
	return boundary
}
