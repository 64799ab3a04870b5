package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/poolhall/tablequeue/internal/model"
)

// Notifier is the outbound notification boundary. The core only decides who
// must be told to come to the table and with what deadline; delivering the
// message (call, text) is an external collaborator's job.
type Notifier interface {
	// ChallengerUp tells a player they are up next and how long they have
	// to arrive
	ChallengerUp(ctx context.Context, player model.Player, deadline time.Duration) error
}

// LogNotifier records notifications to the log instead of delivering them.
// It stands in wherever a real delivery integration isn't configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) ChallengerUp(ctx context.Context, player model.Player, deadline time.Duration) error {
	n.logger.Info("challenger called to table",
		slog.String("contact", string(player.Contact)),
		slog.String("name", player.Name),
		slog.Duration("deadline", deadline),
	)
	return nil
}
