package memory

import (
	"context"
	"sync"
	"time"

	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A single mutex covers all collections, so every check-then-act operation
// is trivially linearizable.
type Storage struct {
	mu sync.RWMutex

	players map[model.Contact]*model.Player
	queue   model.Queue
	games   map[model.GameID]*model.Game
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.Contact]*model.Player),
		games:   make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.Contact]; ok {
		return model.ErrDuplicateContact
	}
	p := *player
	s.players[player.Contact] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, contact model.Contact) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[contact]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// Queue operations

func (s *Storage) EnsureQueue(ctx context.Context) error {
	// The in-memory queue always exists as a zero value
	return nil
}

func (s *Storage) GetQueue(ctx context.Context) (*model.Queue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := model.Queue{
		Entries: make([]model.QueueEntry, len(s.queue.Entries)),
		Version: s.queue.Version,
	}
	copy(q.Entries, s.queue.Entries)
	return &q, nil
}

func (s *Storage) AppendQueueEntry(ctx context.Context, entry model.QueueEntry) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos, ok := s.queue.Position(entry.Contact); ok {
		return false, pos, nil
	}
	s.queue.Entries = append(s.queue.Entries, entry)
	s.queue.Version++
	return true, len(s.queue.Entries), nil
}

func (s *Storage) RemoveQueueEntry(ctx context.Context, contact model.Contact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.queue.Entries {
		if e.Contact == contact {
			s.queue.Entries = append(s.queue.Entries[:i], s.queue.Entries[i+1:]...)
			s.queue.Version++
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) PopQueueHead(ctx context.Context) (*model.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue.Entries) == 0 {
		return nil, nil
	}
	head := s.queue.Entries[0]
	s.queue.Entries = s.queue.Entries[1:]
	s.queue.Version++
	return &head, nil
}

func (s *Storage) PushQueueHead(ctx context.Context, entry model.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Entries = append([]model.QueueEntry{entry}, s.queue.Entries...)
	s.queue.Version++
	return nil
}

func (s *Storage) EvictQueueBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.queue.Entries[:0]
	removed := 0
	for _, e := range s.queue.Entries {
		if e.JoinedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.queue.Entries = kept
	if removed > 0 {
		s.queue.Version++
	}
	return removed, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		if g.Status != model.GameStatusFinished {
			return model.ErrGameAlreadyActive
		}
	}
	g := *game
	s.games[game.ID] = &g
	return nil
}

func (s *Storage) GetGameByStatus(ctx context.Context, status model.GameStatus) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.games {
		if g.Status == status {
			out := *g
			return &out, nil
		}
	}
	return nil, model.ErrGameNotFound
}

func (s *Storage) TransitionGame(ctx context.Context, id model.GameID, from, to model.GameStatus, now time.Time) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok || g.Status != from {
		return nil, model.ErrGameNotFound
	}
	g.Status = to
	if to == model.GameStatusFinished {
		finishedAt := now
		g.FinishedAt = &finishedAt
	}
	out := *g
	return &out, nil
}

func (s *Storage) ArchiveFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	archived := 0
	for id, g := range s.games {
		if g.Status == model.GameStatusFinished && g.FinishedAt != nil && g.FinishedAt.Before(cutoff) {
			delete(s.games, id)
			archived++
		}
	}
	return archived, nil
}
