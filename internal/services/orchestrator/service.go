package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/services/match"
	"github.com/poolhall/tablequeue/internal/services/queue"
	"github.com/poolhall/tablequeue/internal/services/registry"
)

// Service is a stateless dispatcher for the named table actions. The actor
// is identified by an already-normalized contact; turning natural language
// into an action name and arguments is the agent layer's job.
type Service struct {
	registry *registry.Service
	queue    *queue.Controller
	match    *match.Controller
	logger   *slog.Logger
}

// New creates a new orchestrator service
func New(registry *registry.Service, queue *queue.Controller, match *match.Controller, logger *slog.Logger) *Service {
	return &Service{
		registry: registry,
		queue:    queue,
		match:    match,
		logger:   logger,
	}
}

// Dispatch executes one named action for the actor. Expected negative
// outcomes (not in line, no active game, not authorized, ...) come back as
// Results with a descriptive text; only store faults and integrity
// violations return an error.
func (s *Service) Dispatch(ctx context.Context, actor model.Contact, action Action, args map[string]string) (Result, error) {
	// Purge yesterday's state before anything that reads today's queue
	switch action {
	case ActionJoinQueue, ActionLeaveQueue, ActionCheckPosition, ActionSeeQueue, ActionEndMatch:
		if err := s.sweepStale(ctx); err != nil {
			return Result{}, err
		}
	}

	switch action {
	case ActionJoinQueue:
		return s.joinQueue(ctx, actor)
	case ActionLeaveQueue:
		return s.leaveQueue(ctx, actor)
	case ActionCheckPosition:
		return s.checkPosition(ctx, actor)
	case ActionSeeQueue:
		return s.seeQueue(ctx)
	case ActionStartGame:
		return s.startGame(ctx, actor, args["opponent"])
	case ActionEndMatch:
		return s.endMatch(ctx, actor)
	case ActionConfirmChallenger:
		return s.confirmChallenger(ctx, actor)
	default:
		return Result{}, fmt.Errorf("unknown action %q", action)
	}
}

// sweepStale evicts stale queue entries and archives finished games from
// before the daily cutoff
func (s *Service) sweepStale(ctx context.Context) error {
	if _, err := s.queue.EvictStale(ctx); err != nil {
		return err
	}
	if _, err := s.match.ArchiveStale(ctx, s.queue.Cutoff()); err != nil {
		return err
	}
	return nil
}

func (s *Service) joinQueue(ctx context.Context, actor model.Contact) (Result, error) {
	res, err := s.queue.Join(ctx, actor)
	if err != nil {
		return Result{}, err
	}

	if !res.Added {
		return Result{
			Code: CodeAlreadyInQueue,
			Text: fmt.Sprintf("You're already in line at position %d.", res.Position),
		}, nil
	}
	return Result{
		Code: CodeOK,
		Text: fmt.Sprintf("You're in line at position %d.", res.Position),
	}, nil
}

func (s *Service) leaveQueue(ctx context.Context, actor model.Contact) (Result, error) {
	removed, err := s.queue.Leave(ctx, actor)
	if err != nil {
		return Result{}, err
	}

	if !removed {
		return Result{Code: CodeNotInQueue, Text: "You're not in line."}, nil
	}
	return Result{Code: CodeOK, Text: "You've left the line."}, nil
}

func (s *Service) checkPosition(ctx context.Context, actor model.Contact) (Result, error) {
	pos, waiting, err := s.queue.Position(ctx, actor)
	if err != nil {
		return Result{}, err
	}

	if !waiting {
		return Result{Code: CodeNotInQueue, Text: "You're not in line. Ask to join if you want a spot."}, nil
	}
	return Result{Code: CodeOK, Text: fmt.Sprintf("You're at position %d in line.", pos)}, nil
}

func (s *Service) seeQueue(ctx context.Context) (Result, error) {
	players, err := s.queue.Snapshot(ctx)
	if err != nil {
		return Result{}, err
	}

	if len(players) == 0 {
		return Result{Code: CodeOK, Text: "Nobody is in line right now."}, nil
	}

	var b strings.Builder
	b.WriteString("Current line:")
	for i, p := range players {
		fmt.Fprintf(&b, "\n%d. %s", i+1, p.Name)
	}
	return Result{Code: CodeOK, Text: b.String()}, nil
}

func (s *Service) startGame(ctx context.Context, actor model.Contact, rawOpponent string) (Result, error) {
	if rawOpponent == "" {
		return Result{Code: CodeInvalidArgument, Text: "Starting a game needs an opponent's number."}, nil
	}

	opponent, err := s.registry.Lookup(ctx, rawOpponent)
	if err != nil {
		var invalid *model.InvalidContactError
		switch {
		case errors.As(err, &invalid):
			return Result{
				Code: CodeInvalidArgument,
				Text: fmt.Sprintf("That doesn't look like a valid number: %s.", invalid.Reason),
			}, nil
		case errors.Is(err, model.ErrPlayerNotFound):
			return Result{
				Code: CodePlayerNotFound,
				Text: "Your opponent isn't registered yet. They need to register before you can start.",
			}, nil
		}
		return Result{}, err
	}

	if _, err := s.match.StartInitiating(ctx, actor, opponent.Contact); err != nil {
		if errors.Is(err, model.ErrGameAlreadyActive) {
			return Result{
				Code: CodeGameAlreadyActive,
				Text: "A game is already underway. If your match just finished, report the result instead.",
			}, nil
		}
		return Result{}, err
	}

	return Result{
		Code: CodeOK,
		Text: fmt.Sprintf("Game on against %s. Good luck.", opponent.Name),
	}, nil
}

func (s *Service) endMatch(ctx context.Context, actor model.Contact) (Result, error) {
	winnerContact, _, err := s.match.Conclude(ctx, actor)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrGameNotFound):
			return Result{Code: CodeNoActiveGame, Text: "There's no game in progress to finish."}, nil
		case errors.Is(err, model.ErrNotAuthorized):
			return Result{Code: CodeNotAuthorized, Text: "Only a player in the current game can report its result."}, nil
		}
		return Result{}, err
	}

	winner, err := s.registry.Get(ctx, winnerContact)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return Result{}, fmt.Errorf("%w: game winner %s has no player record", model.ErrDataIntegrity, winnerContact)
		}
		return Result{}, err
	}

	next, err := s.queue.PopNext(ctx)
	if err != nil {
		return Result{}, err
	}
	if next == nil {
		return Result{
			Code: CodeOK,
			Text: fmt.Sprintf("Game over. %s keeps the table; nobody is waiting, so the table is open.", winner.Name),
		}, nil
	}

	if _, err := s.match.CreatePending(ctx, winner.Contact, next.Player.Contact); err != nil {
		// Compensate: the popped player must not be dropped
		if restoreErr := s.queue.Restore(ctx, next.Entry); restoreErr != nil {
			s.logger.Error("failed to restore popped challenger after pending game failure",
				slog.String("contact", string(next.Player.Contact)),
				slog.String("error", restoreErr.Error()),
			)
			return Result{}, errors.Join(err, restoreErr)
		}
		return Result{}, fmt.Errorf("creating pending game: %w", err)
	}

	return Result{
		Code: CodeOK,
		Text: fmt.Sprintf("Game over. %s keeps the table. %s is up next and has two minutes to arrive.",
			winner.Name, next.Player.Name),
		Notification: &Notification{
			Player:   next.Player,
			Deadline: ArrivalDeadline,
		},
	}, nil
}

func (s *Service) confirmChallenger(ctx context.Context, actor model.Contact) (Result, error) {
	game, err := s.match.Confirm(ctx, actor)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrGameNotFound):
			return Result{Code: CodeNoPendingGame, Text: "There's no challenger waiting to be confirmed."}, nil
		case errors.Is(err, model.ErrNotAuthorized):
			return Result{Code: CodeNotAuthorized, Text: "Only the current table holder can confirm the challenger's arrival."}, nil
		}
		return Result{}, err
	}

	challenger, err := s.registry.Get(ctx, game.Challenger)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return Result{}, fmt.Errorf("%w: challenger %s has no player record", model.ErrDataIntegrity, game.Challenger)
		}
		return Result{}, err
	}

	return Result{
		Code: CodeOK,
		Text: fmt.Sprintf("Challenger %s confirmed. The game is live.", challenger.Name),
	}, nil
}
