package match

import (
	"context"
	"log/slog"
	"time"

	"github.com/poolhall/tablequeue/internal/dependencies/clock"
	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/storage"
)

// Controller manages the two-party match state machine. Global exclusivity
// (at most one pending and one in-progress game) is enforced by the storage
// layer's conditional writes; the controller encodes the transitions and
// authorization rules.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new match controller
func NewController(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// StartInitiating creates the first game of a cycle, already in progress.
// There is no prior incumbent to hand off from, so the confirmation
// handshake is skipped. Fails with model.ErrGameAlreadyActive if any
// non-finished game exists.
func (c *Controller) StartInitiating(ctx context.Context, king, challenger model.Contact) (*model.Game, error) {
	game := &model.Game{
		ID:         model.NewGameID(),
		King:       king,
		Challenger: challenger,
		Status:     model.GameStatusInProgress,
		CreatedAt:  c.clock.Now(),
	}

	if err := c.storage.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("game_id", string(game.ID)),
		slog.String("king", string(king)),
		slog.String("challenger", string(challenger)),
	)
	return game, nil
}

// CreatePending creates the follow-up game after a match ends: the winner
// holds the table and the next player in line must arrive and be confirmed
func (c *Controller) CreatePending(ctx context.Context, king, challenger model.Contact) (*model.Game, error) {
	game := &model.Game{
		ID:         model.NewGameID(),
		King:       king,
		Challenger: challenger,
		Status:     model.GameStatusPendingChallenger,
		CreatedAt:  c.clock.Now(),
	}

	if err := c.storage.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("pending game created",
		slog.String("game_id", string(game.ID)),
		slog.String("king", string(king)),
		slog.String("challenger", string(challenger)),
	)
	return game, nil
}

// Confirm marks the pending challenger as arrived, making the game live.
// Only the pending game's king may confirm.
func (c *Controller) Confirm(ctx context.Context, by model.Contact) (*model.Game, error) {
	game, err := c.storage.GetGameByStatus(ctx, model.GameStatusPendingChallenger)
	if err != nil {
		return nil, err
	}

	if game.King != by {
		return nil, model.ErrNotAuthorized
	}

	updated, err := c.storage.TransitionGame(ctx, game.ID,
		model.GameStatusPendingChallenger, model.GameStatusInProgress, c.clock.Now())
	if err != nil {
		return nil, err
	}

	c.logger.Info("challenger confirmed", slog.String("game_id", string(game.ID)))
	return updated, nil
}

// Conclude finishes the game in progress. The reporter is taken to be the
// loser; the other participant becomes the winner and keeps the table.
func (c *Controller) Conclude(ctx context.Context, reportedBy model.Contact) (model.Contact, *model.Game, error) {
	game, err := c.storage.GetGameByStatus(ctx, model.GameStatusInProgress)
	if err != nil {
		return "", nil, err
	}

	if !game.HasParticipant(reportedBy) {
		return "", nil, model.ErrNotAuthorized
	}
	winner := game.Opponent(reportedBy)

	updated, err := c.storage.TransitionGame(ctx, game.ID,
		model.GameStatusInProgress, model.GameStatusFinished, c.clock.Now())
	if err != nil {
		return "", nil, err
	}

	c.logger.Info("game concluded",
		slog.String("game_id", string(game.ID)),
		slog.String("winner", string(winner)),
		slog.String("loser", string(reportedBy)),
	)
	return winner, updated, nil
}

// Active returns the unique game in progress, or model.ErrGameNotFound
func (c *Controller) Active(ctx context.Context) (*model.Game, error) {
	return c.storage.GetGameByStatus(ctx, model.GameStatusInProgress)
}

// Pending returns the unique game awaiting challenger confirmation, or
// model.ErrGameNotFound
func (c *Controller) Pending(ctx context.Context) (*model.Game, error) {
	return c.storage.GetGameByStatus(ctx, model.GameStatusPendingChallenger)
}

// ArchiveStale clears finished games that concluded before the cutoff, so
// "no game exists" stays equivalent to "no game today"
func (c *Controller) ArchiveStale(ctx context.Context, cutoff time.Time) (int, error) {
	archived, err := c.storage.ArchiveFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if archived > 0 {
		c.logger.Info("archived finished games", slog.Int("archived", archived))
	}
	return archived, nil
}
