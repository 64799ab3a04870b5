package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/storage"
)

// Storage is a MongoDB-backed implementation of the storage interface.
//
// The queue is a singleton document whose entries array is mutated with
// predicate-guarded $push/$pull updates, so check-then-act sequences are
// atomic at the document level. Uniqueness invariants (one player per
// contact, one non-finished game) are held by unique indexes created at
// startup: plain inserts conflict on the index instead of racing a
// check-then-insert.
type Storage struct {
	client  *mongo.Client
	players *mongo.Collection
	queue   *mongo.Collection
	games   *mongo.Collection
}

// New creates a new MongoDB storage instance
func New(cfg Config) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a MongoDB storage with an existing client (for testing)
func NewWithClient(client *mongo.Client, cfg Config) *Storage {
	db := client.Database(cfg.Database)
	return &Storage{
		client:  client,
		players: db.Collection("players"),
		queue:   db.Collection("queue"),
		games:   db.Collection("games"),
	}
}

// Close disconnects from MongoDB
func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// gameDoc is the stored form of a game. TableLock is set on every
// non-finished game and cleared on finish; the partial unique index on it
// admits at most one non-finished game at a time.
type gameDoc struct {
	model.Game `bson:",inline"`
	TableLock  string `bson:"table_lock,omitempty"`
}

// tableLockValue is the constant lock marker; only its presence matters
const tableLockValue = "held"

// ensureIndexes creates the unique indexes backing the conditional inserts.
// Without them two concurrent inserts whose filters match nothing could
// both succeed.
func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.players.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "contact", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.games.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "table_lock", Value: 1}},
		Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.M{"table_lock": bson.M{"$exists": true}}),
	})
	return err
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	// The unique index on contact makes the insert the duplicate check
	if _, err := s.players.InsertOne(ctx, player); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrDuplicateContact
		}
		return err
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, contact model.Contact) (*model.Player, error) {
	var player model.Player
	err := s.players.FindOne(ctx, bson.M{"contact": contact}).Decode(&player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

// Queue operations

func (s *Storage) EnsureQueue(ctx context.Context) error {
	// This is the once-at-startup hook, so the uniqueness indexes are
	// created here alongside the singleton document
	if err := s.ensureIndexes(ctx); err != nil {
		return err
	}

	count, err := s.queue.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}

	switch {
	case count == 0:
		_, err := s.queue.InsertOne(ctx, &model.Queue{Entries: []model.QueueEntry{}})
		return err
	case count > 1:
		return model.ErrQueueCorrupted
	default:
		return nil
	}
}

func (s *Storage) GetQueue(ctx context.Context) (*model.Queue, error) {
	var q model.Queue
	err := s.queue.FindOne(ctx, bson.M{}).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrQueueMissing
		}
		return nil, err
	}
	return &q, nil
}

func (s *Storage) AppendQueueEntry(ctx context.Context, entry model.QueueEntry) (bool, int, error) {
	// The filter only matches the queue document when the contact is not
	// already waiting, making the append conditional and atomic
	res, err := s.queue.UpdateOne(ctx,
		bson.M{"entries.contact": bson.M{"$ne": entry.Contact}},
		bson.M{
			"$push": bson.M{"entries": entry},
			"$inc":  bson.M{"version": 1},
		},
	)
	if err != nil {
		return false, 0, err
	}

	added := res.MatchedCount > 0

	// Position is always recomputed from the current document
	q, err := s.GetQueue(ctx)
	if err != nil {
		return false, 0, err
	}
	position, ok := q.Position(entry.Contact)
	if !ok {
		// Pushed entry already evicted or pulled by a concurrent writer
		return added, 0, nil
	}
	return added, position, nil
}

func (s *Storage) RemoveQueueEntry(ctx context.Context, contact model.Contact) (bool, error) {
	res, err := s.queue.UpdateOne(ctx,
		bson.M{"entries.contact": contact},
		bson.M{
			"$pull": bson.M{"entries": bson.M{"contact": contact}},
			"$inc":  bson.M{"version": 1},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Storage) PopQueueHead(ctx context.Context) (*model.QueueEntry, error) {
	// Single findAndModify: read the head and remove it in one step
	var before model.Queue
	err := s.queue.FindOneAndUpdate(ctx,
		bson.M{"entries.0": bson.M{"$exists": true}},
		bson.M{
			"$pop": bson.M{"entries": -1},
			"$inc": bson.M{"version": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	head := before.Entries[0]
	return &head, nil
}

func (s *Storage) PushQueueHead(ctx context.Context, entry model.QueueEntry) error {
	res, err := s.queue.UpdateOne(ctx,
		bson.M{},
		bson.M{
			"$push": bson.M{"entries": bson.M{"$each": []model.QueueEntry{entry}, "$position": 0}},
			"$inc":  bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrQueueMissing
	}
	return nil
}

func (s *Storage) EvictQueueBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var before model.Queue
	err := s.queue.FindOneAndUpdate(ctx,
		bson.M{},
		bson.M{
			"$pull": bson.M{"entries": bson.M{"joined_at": bson.M{"$lt": cutoff}}},
			"$inc":  bson.M{"version": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, model.ErrQueueMissing
		}
		return 0, err
	}

	removed := 0
	for _, e := range before.Entries {
		if e.JoinedAt.Before(cutoff) {
			removed++
		}
	}
	return removed, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	// Every new game carries the table lock marker; the partial unique
	// index rejects the insert when another non-finished game holds it
	doc := gameDoc{Game: *game, TableLock: tableLockValue}
	if _, err := s.games.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrGameAlreadyActive
		}
		return err
	}
	return nil
}

func (s *Storage) GetGameByStatus(ctx context.Context, status model.GameStatus) (*model.Game, error) {
	var game model.Game
	err := s.games.FindOne(ctx, bson.M{"status": status}).Decode(&game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *Storage) TransitionGame(ctx context.Context, id model.GameID, from, to model.GameStatus, now time.Time) (*model.Game, error) {
	set := bson.M{"status": to}
	update := bson.M{"$set": set}
	if to == model.GameStatusFinished {
		set["finished_at"] = now
		// Finished games release the table lock so the next game's insert
		// can take it
		update["$unset"] = bson.M{"table_lock": ""}
	}

	var game model.Game
	err := s.games.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ArchiveFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.games.DeleteMany(ctx, bson.M{
		"status":      model.GameStatusFinished,
		"finished_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
