package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/storage"
)

// maxTxRetries bounds optimistic transaction retries before giving up
const maxTxRetries = 8

// Storage is a Redis-backed implementation of the storage interface.
//
// The queue lives in a single versioned JSON document under one key; every
// queue mutation runs inside a WATCH transaction on that key, so the
// check-then-act sequences in AppendQueueEntry and PopQueueHead are atomic
// with respect to concurrent callers. The non-finished game exclusivity
// invariant is held by per-status index keys written under WATCH.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// watch runs fn inside a WATCH transaction on the given keys, retrying on
// conflict with concurrent writers
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("transaction on %v did not settle after %d retries", keys, maxTxRetries)
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Conditional insert: SETNX fails if the contact is taken
	ok, err := s.client.SetNX(ctx, playerKey(player.Contact), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrDuplicateContact
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, contact model.Contact) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(contact)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Queue operations

// errQueueUnchanged signals that a queue update closure decided not to write
var errQueueUnchanged = errors.New("queue unchanged")

// updateQueue loads the queue document, applies mutate, and writes it back
// with an incremented version, all under WATCH on the queue key
func (s *Storage) updateQueue(ctx context.Context, mutate func(q *model.Queue) error) error {
	err := s.watch(ctx, func(tx *redis.Tx) error {
		q, err := getQueueTx(ctx, tx)
		if err != nil {
			return err
		}

		if err := mutate(q); err != nil {
			return err
		}
		q.Version++

		data, err := json.Marshal(q)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, queueKey(), data, 0)
			return nil
		})
		return err
	}, queueKey())

	if errors.Is(err, errQueueUnchanged) {
		return nil
	}
	return err
}

func getQueueTx(ctx context.Context, tx *redis.Tx) (*model.Queue, error) {
	data, err := tx.Get(ctx, queueKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQueueMissing
		}
		return nil, err
	}

	var q model.Queue
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Storage) EnsureQueue(ctx context.Context) error {
	// A single key can hold at most one document, so the more-than-one
	// check from the interface contract cannot trip here
	data, err := json.Marshal(&model.Queue{Entries: []model.QueueEntry{}})
	if err != nil {
		return err
	}
	return s.client.SetNX(ctx, queueKey(), data, 0).Err()
}

func (s *Storage) GetQueue(ctx context.Context) (*model.Queue, error) {
	data, err := s.client.Get(ctx, queueKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQueueMissing
		}
		return nil, err
	}

	var q model.Queue
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Storage) AppendQueueEntry(ctx context.Context, entry model.QueueEntry) (bool, int, error) {
	var added bool
	var position int

	err := s.updateQueue(ctx, func(q *model.Queue) error {
		if pos, ok := q.Position(entry.Contact); ok {
			added = false
			position = pos
			return errQueueUnchanged
		}
		q.Entries = append(q.Entries, entry)
		added = true
		position = len(q.Entries)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return added, position, nil
}

func (s *Storage) RemoveQueueEntry(ctx context.Context, contact model.Contact) (bool, error) {
	var removed bool

	err := s.updateQueue(ctx, func(q *model.Queue) error {
		for i, e := range q.Entries {
			if e.Contact == contact {
				q.Entries = append(q.Entries[:i], q.Entries[i+1:]...)
				removed = true
				return nil
			}
		}
		removed = false
		return errQueueUnchanged
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *Storage) PopQueueHead(ctx context.Context) (*model.QueueEntry, error) {
	var head *model.QueueEntry

	err := s.updateQueue(ctx, func(q *model.Queue) error {
		if len(q.Entries) == 0 {
			head = nil
			return errQueueUnchanged
		}
		h := q.Entries[0]
		head = &h
		q.Entries = q.Entries[1:]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return head, nil
}

func (s *Storage) PushQueueHead(ctx context.Context, entry model.QueueEntry) error {
	return s.updateQueue(ctx, func(q *model.Queue) error {
		q.Entries = append([]model.QueueEntry{entry}, q.Entries...)
		return nil
	})
}

func (s *Storage) EvictQueueBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var removed int

	err := s.updateQueue(ctx, func(q *model.Queue) error {
		kept := q.Entries[:0]
		removed = 0
		for _, e := range q.Entries {
			if e.JoinedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if removed == 0 {
			return errQueueUnchanged
		}
		q.Entries = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pendingKey := gameStatusKey(model.GameStatusPendingChallenger)
	activeKey := gameStatusKey(model.GameStatusInProgress)

	return s.watch(ctx, func(tx *redis.Tx) error {
		// Exclusivity check: no non-finished game may exist
		existing, err := tx.Exists(ctx, pendingKey, activeKey).Result()
		if err != nil {
			return err
		}
		if existing > 0 {
			return model.ErrGameAlreadyActive
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(game.ID), data, 0)
			pipe.Set(ctx, gameStatusKey(game.Status), string(game.ID), 0)
			return nil
		})
		return err
	}, pendingKey, activeKey)
}

func (s *Storage) GetGameByStatus(ctx context.Context, status model.GameStatus) (*model.Game, error) {
	id, err := s.client.Get(ctx, gameStatusKey(status)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return s.getGame(ctx, model.GameID(id))
}

func (s *Storage) getGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) TransitionGame(ctx context.Context, id model.GameID, from, to model.GameStatus, now time.Time) (*model.Game, error) {
	var updated *model.Game

	err := s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, gameKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGameNotFound
			}
			return err
		}

		var game model.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return err
		}
		if game.Status != from {
			return model.ErrGameNotFound
		}

		game.Status = to
		if to == model.GameStatusFinished {
			finishedAt := now
			game.FinishedAt = &finishedAt
		}

		out, err := json.Marshal(&game)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(id), out, 0)
			pipe.Del(ctx, gameStatusKey(from))
			if to == model.GameStatusFinished {
				pipe.ZAdd(ctx, finishedGamesKey(), redis.Z{
					Score:  float64(now.Unix()),
					Member: string(id),
				})
			} else {
				pipe.Set(ctx, gameStatusKey(to), string(id), 0)
			}
			return nil
		})
		if err != nil {
			return err
		}

		updated = &game
		return nil
	}, gameKey(id), gameStatusKey(from), gameStatusKey(to))

	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) ArchiveFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	// Strictly-before semantics: exclusive upper bound on the finish time
	ids, err := s.client.ZRangeByScore(ctx, finishedGamesKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, gameKey(model.GameID(id)))
		pipe.ZRem(ctx, finishedGamesKey(), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(ids), nil
}
