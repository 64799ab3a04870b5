package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/poolhall/tablequeue/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) entry(contact model.Contact, offset time.Duration) model.QueueEntry {
	return model.QueueEntry{Contact: contact, JoinedAt: s.now.Add(offset)}
}

// Player tests

func (s *StorageSuite) TestCreateAndGetPlayer() {
	player := &model.Player{
		Contact:   "12223334455",
		Name:      "Alice",
		CreatedAt: s.now,
	}

	err := s.storage.CreatePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "12223334455")
	s.Require().NoError(err)
	s.Equal(player.Contact, retrieved.Contact)
	s.Equal(player.Name, retrieved.Name)
}

func (s *StorageSuite) TestCreatePlayerDuplicateContact() {
	player := &model.Player{Contact: "12223334455", Name: "Alice"}
	_ = s.storage.CreatePlayer(s.ctx, player)

	err := s.storage.CreatePlayer(s.ctx, &model.Player{Contact: "12223334455", Name: "Alicia"})
	s.ErrorIs(err, model.ErrDuplicateContact)

	// Original record is untouched
	retrieved, _ := s.storage.GetPlayer(s.ctx, "12223334455")
	s.Equal("Alice", retrieved.Name)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "19998887766")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Queue tests

func (s *StorageSuite) TestAppendQueueEntryPreservesOrder() {
	added, pos, err := s.storage.AppendQueueEntry(s.ctx, s.entry("12223334455", 0))
	s.Require().NoError(err)
	s.True(added)
	s.Equal(1, pos)

	added, pos, err = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334456", time.Minute))
	s.Require().NoError(err)
	s.True(added)
	s.Equal(2, pos)

	q, err := s.storage.GetQueue(s.ctx)
	s.Require().NoError(err)
	s.Len(q.Entries, 2)
	s.Equal(model.Contact("12223334455"), q.Entries[0].Contact)
	s.Equal(model.Contact("12223334456"), q.Entries[1].Contact)
}

func (s *StorageSuite) TestAppendQueueEntryIdempotent() {
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334455", 0))

	added, pos, err := s.storage.AppendQueueEntry(s.ctx, s.entry("12223334455", time.Minute))
	s.Require().NoError(err)
	s.False(added)
	s.Equal(1, pos)

	q, _ := s.storage.GetQueue(s.ctx)
	s.Len(q.Entries, 1)
	// Original join time is preserved
	s.Equal(s.now, q.Entries[0].JoinedAt)
}

func (s *StorageSuite) TestRemoveQueueEntry() {
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334455", 0))
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334456", time.Minute))

	removed, err := s.storage.RemoveQueueEntry(s.ctx, "12223334455")
	s.Require().NoError(err)
	s.True(removed)

	q, _ := s.storage.GetQueue(s.ctx)
	s.Len(q.Entries, 1)
	s.Equal(model.Contact("12223334456"), q.Entries[0].Contact)
}

func (s *StorageSuite) TestRemoveQueueEntryAbsent() {
	removed, err := s.storage.RemoveQueueEntry(s.ctx, "12223334455")
	s.Require().NoError(err)
	s.False(removed)
}

func (s *StorageSuite) TestPopQueueHead() {
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334455", 0))
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334456", time.Minute))

	head, err := s.storage.PopQueueHead(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(head)
	s.Equal(model.Contact("12223334455"), head.Contact)

	q, _ := s.storage.GetQueue(s.ctx)
	s.Len(q.Entries, 1)
}

func (s *StorageSuite) TestPopQueueHeadEmpty() {
	head, err := s.storage.PopQueueHead(s.ctx)
	s.Require().NoError(err)
	s.Nil(head)
}

func (s *StorageSuite) TestPushQueueHeadRestoresFront() {
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334456", time.Minute))

	err := s.storage.PushQueueHead(s.ctx, s.entry("12223334455", 0))
	s.Require().NoError(err)

	q, _ := s.storage.GetQueue(s.ctx)
	s.Len(q.Entries, 2)
	s.Equal(model.Contact("12223334455"), q.Entries[0].Contact)
}

func (s *StorageSuite) TestEvictQueueBefore() {
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334455", -2*time.Hour))
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334456", -time.Hour))
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334457", time.Hour))

	removed, err := s.storage.EvictQueueBefore(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(2, removed)

	q, _ := s.storage.GetQueue(s.ctx)
	s.Len(q.Entries, 1)
	s.Equal(model.Contact("12223334457"), q.Entries[0].Contact)
}

func (s *StorageSuite) TestEvictQueueBeforeBoundaryIsExclusive() {
	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334455", 0))

	removed, err := s.storage.EvictQueueBefore(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(0, removed)

	q, _ := s.storage.GetQueue(s.ctx)
	s.Len(q.Entries, 1)
}

func (s *StorageSuite) TestQueueVersionIncrementsOnMutation() {
	q, _ := s.storage.GetQueue(s.ctx)
	v0 := q.Version

	_, _, _ = s.storage.AppendQueueEntry(s.ctx, s.entry("12223334455", 0))
	q, _ = s.storage.GetQueue(s.ctx)
	s.Greater(q.Version, v0)
}

// Game tests

func (s *StorageSuite) TestCreateAndGetGameByStatus() {
	game := &model.Game{
		ID:         model.NewGameID(),
		King:       "12223334455",
		Challenger: "12223334456",
		Status:     model.GameStatusInProgress,
		CreatedAt:  s.now,
	}

	err := s.storage.CreateGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGameByStatus(s.ctx, model.GameStatusInProgress)
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
}

func (s *StorageSuite) TestCreateGameRejectsSecondActive() {
	first := &model.Game{
		ID:     model.NewGameID(),
		King:   "12223334455",
		Status: model.GameStatusInProgress,
	}
	_ = s.storage.CreateGame(s.ctx, first)

	second := &model.Game{
		ID:     model.NewGameID(),
		King:   "12223334457",
		Status: model.GameStatusPendingChallenger,
	}
	err := s.storage.CreateGame(s.ctx, second)
	s.ErrorIs(err, model.ErrGameAlreadyActive)
}

func (s *StorageSuite) TestCreateGameAllowedAfterFinish() {
	first := &model.Game{ID: model.NewGameID(), Status: model.GameStatusInProgress}
	_ = s.storage.CreateGame(s.ctx, first)
	_, err := s.storage.TransitionGame(s.ctx, first.ID, model.GameStatusInProgress, model.GameStatusFinished, s.now)
	s.Require().NoError(err)

	second := &model.Game{ID: model.NewGameID(), Status: model.GameStatusPendingChallenger}
	s.NoError(s.storage.CreateGame(s.ctx, second))
}

func (s *StorageSuite) TestGetGameByStatusNotFound() {
	_, err := s.storage.GetGameByStatus(s.ctx, model.GameStatusInProgress)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestTransitionGame() {
	game := &model.Game{ID: model.NewGameID(), Status: model.GameStatusPendingChallenger}
	_ = s.storage.CreateGame(s.ctx, game)

	updated, err := s.storage.TransitionGame(s.ctx, game.ID, model.GameStatusPendingChallenger, model.GameStatusInProgress, s.now)
	s.Require().NoError(err)
	s.Equal(model.GameStatusInProgress, updated.Status)
	s.Nil(updated.FinishedAt)
}

func (s *StorageSuite) TestTransitionGameSetsFinishedAt() {
	game := &model.Game{ID: model.NewGameID(), Status: model.GameStatusInProgress}
	_ = s.storage.CreateGame(s.ctx, game)

	updated, err := s.storage.TransitionGame(s.ctx, game.ID, model.GameStatusInProgress, model.GameStatusFinished, s.now)
	s.Require().NoError(err)
	s.Require().NotNil(updated.FinishedAt)
	s.Equal(s.now, *updated.FinishedAt)
}

func (s *StorageSuite) TestTransitionGameWrongStatus() {
	game := &model.Game{ID: model.NewGameID(), Status: model.GameStatusInProgress}
	_ = s.storage.CreateGame(s.ctx, game)

	_, err := s.storage.TransitionGame(s.ctx, game.ID, model.GameStatusPendingChallenger, model.GameStatusInProgress, s.now)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestArchiveFinishedBefore() {
	game := &model.Game{ID: model.NewGameID(), Status: model.GameStatusInProgress}
	_ = s.storage.CreateGame(s.ctx, game)
	_, _ = s.storage.TransitionGame(s.ctx, game.ID, model.GameStatusInProgress, model.GameStatusFinished, s.now.Add(-time.Hour))

	archived, err := s.storage.ArchiveFinishedBefore(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(1, archived)

	// A fresh game can now be created
	s.NoError(s.storage.CreateGame(s.ctx, &model.Game{ID: model.NewGameID(), Status: model.GameStatusInProgress}))
}

func (s *StorageSuite) TestArchiveFinishedBeforeSkipsRecent() {
	game := &model.Game{ID: model.NewGameID(), Status: model.GameStatusInProgress}
	_ = s.storage.CreateGame(s.ctx, game)
	_, _ = s.storage.TransitionGame(s.ctx, game.ID, model.GameStatusInProgress, model.GameStatusFinished, s.now.Add(time.Hour))

	archived, err := s.storage.ArchiveFinishedBefore(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(0, archived)
}
