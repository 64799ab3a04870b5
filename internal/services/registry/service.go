package registry

import (
	"context"
	"log/slog"

	"github.com/poolhall/tablequeue/internal/dependencies/clock"
	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/storage"
)

// Service manages player identity records keyed by contact address
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new registry service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Register creates a player record for the given raw contact address.
// Re-registering an existing contact fails with model.ErrDuplicateContact;
// the caller decides whether that matters.
func (s *Service) Register(ctx context.Context, name, rawContact string) (*model.Player, error) {
	contact, err := model.NormalizeContact(rawContact)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		Contact:   contact,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player registered",
		slog.String("contact", string(contact)),
		slog.String("name", name),
	)
	return player, nil
}

// Lookup resolves a raw contact address to a player record
func (s *Service) Lookup(ctx context.Context, rawContact string) (*model.Player, error) {
	contact, err := model.NormalizeContact(rawContact)
	if err != nil {
		return nil, err
	}
	return s.storage.GetPlayer(ctx, contact)
}

// Get resolves an already-normalized contact to a player record
func (s *Service) Get(ctx context.Context, contact model.Contact) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, contact)
}
