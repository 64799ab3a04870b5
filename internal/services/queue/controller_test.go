package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/poolhall/tablequeue/internal/dependencies/mocks"
	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/storage/memory"
	"github.com/poolhall/tablequeue/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.controller = NewController(s.storage, s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) registerPlayer(contact model.Contact, name string) {
	err := s.storage.CreatePlayer(s.ctx, &model.Player{
		Contact:   contact,
		Name:      name,
		CreatedAt: s.clock.Now(),
	})
	s.Require().NoError(err)
}

// Join tests

func (s *ControllerSuite) TestJoinAppendsToTail() {
	res, err := s.controller.Join(s.ctx, "12223334455")
	s.Require().NoError(err)
	s.True(res.Added)
	s.Equal(1, res.Position)

	res, err = s.controller.Join(s.ctx, "12223334456")
	s.Require().NoError(err)
	s.True(res.Added)
	s.Equal(2, res.Position)
}

func (s *ControllerSuite) TestJoinTwiceIsNoOp() {
	_, _ = s.controller.Join(s.ctx, "12223334455")
	_, _ = s.controller.Join(s.ctx, "12223334456")

	// Joining again reports the existing position without moving anyone
	res, err := s.controller.Join(s.ctx, "12223334455")
	s.Require().NoError(err)
	s.False(res.Added)
	s.Equal(1, res.Position)

	pos, waiting, _ := s.controller.Position(s.ctx, "12223334456")
	s.True(waiting)
	s.Equal(2, pos)
}

func (s *ControllerSuite) TestJoinStampsJoinTimeFromClock() {
	_, _ = s.controller.Join(s.ctx, "12223334455")

	q, err := s.storage.GetQueue(s.ctx)
	s.Require().NoError(err)
	s.True(q.Entries[0].JoinedAt.Equal(s.clock.Now()))
}

// Leave tests

func (s *ControllerSuite) TestLeaveClosesGap() {
	_, _ = s.controller.Join(s.ctx, "12223334455")
	_, _ = s.controller.Join(s.ctx, "12223334456")
	_, _ = s.controller.Join(s.ctx, "12223334457")

	removed, err := s.controller.Leave(s.ctx, "12223334456")
	s.Require().NoError(err)
	s.True(removed)

	pos, _, _ := s.controller.Position(s.ctx, "12223334457")
	s.Equal(2, pos)
}

func (s *ControllerSuite) TestLeaveWhenNotWaiting() {
	removed, err := s.controller.Leave(s.ctx, "12223334455")
	s.Require().NoError(err)
	s.False(removed)
}

func (s *ControllerSuite) TestLeaveThenRejoinGoesToTail() {
	_, _ = s.controller.Join(s.ctx, "12223334455")
	_, _ = s.controller.Join(s.ctx, "12223334456")

	_, _ = s.controller.Leave(s.ctx, "12223334455")
	res, err := s.controller.Join(s.ctx, "12223334455")
	s.Require().NoError(err)
	s.True(res.Added)
	s.Equal(2, res.Position)
}

// Position tests

func (s *ControllerSuite) TestPositionNotWaiting() {
	_, waiting, err := s.controller.Position(s.ctx, "12223334455")
	s.Require().NoError(err)
	s.False(waiting)
}

// Snapshot tests

func (s *ControllerSuite) TestSnapshotResolvesPlayersInOrder() {
	s.registerPlayer("12223334455", "Alice")
	s.registerPlayer("12223334456", "Bob")
	_, _ = s.controller.Join(s.ctx, "12223334455")
	_, _ = s.controller.Join(s.ctx, "12223334456")

	players, err := s.controller.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal("Alice", players[0].Name)
	s.Equal("Bob", players[1].Name)
}

func (s *ControllerSuite) TestSnapshotEmpty() {
	players, err := s.controller.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *ControllerSuite) TestSnapshotDanglingContactIsIntegrityFailure() {
	// Entry with no backing player record
	_, _ = s.controller.Join(s.ctx, "12223334455")

	_, err := s.controller.Snapshot(s.ctx)
	s.ErrorIs(err, model.ErrDataIntegrity)
}

// PopNext tests

func (s *ControllerSuite) TestPopNextReturnsHead() {
	s.registerPlayer("12223334455", "Alice")
	s.registerPlayer("12223334456", "Bob")
	_, _ = s.controller.Join(s.ctx, "12223334455")
	_, _ = s.controller.Join(s.ctx, "12223334456")

	popped, err := s.controller.PopNext(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(popped)
	s.Equal("Alice", popped.Player.Name)
	s.Equal(model.Contact("12223334455"), popped.Entry.Contact)

	pos, _, _ := s.controller.Position(s.ctx, "12223334456")
	s.Equal(1, pos)
}

func (s *ControllerSuite) TestPopNextEmpty() {
	popped, err := s.controller.PopNext(s.ctx)
	s.Require().NoError(err)
	s.Nil(popped)
}

func (s *ControllerSuite) TestPopNextDanglingContactRestoresEntry() {
	_, _ = s.controller.Join(s.ctx, "12223334455")

	_, err := s.controller.PopNext(s.ctx)
	s.ErrorIs(err, model.ErrDataIntegrity)

	// The entry is back at the head, not silently lost
	pos, waiting, _ := s.controller.Position(s.ctx, "12223334455")
	s.True(waiting)
	s.Equal(1, pos)
}

func (s *ControllerSuite) TestRestorePutsEntryBackAtHead() {
	s.registerPlayer("12223334455", "Alice")
	s.registerPlayer("12223334456", "Bob")
	_, _ = s.controller.Join(s.ctx, "12223334455")
	_, _ = s.controller.Join(s.ctx, "12223334456")

	popped, _ := s.controller.PopNext(s.ctx)
	s.Require().NoError(s.controller.Restore(s.ctx, popped.Entry))

	pos, _, _ := s.controller.Position(s.ctx, "12223334455")
	s.Equal(1, pos)

	q, _ := s.storage.GetQueue(s.ctx)
	s.True(q.Entries[0].JoinedAt.Equal(popped.Entry.JoinedAt))
}

// Cutoff tests

func (s *ControllerSuite) TestCutoffSameDayAfterBoundary() {
	// 12:00 is past the 04:00 boundary, so the cutoff is 04:00 today
	cutoff := s.controller.Cutoff()
	s.Equal(time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC), cutoff)
}

func (s *ControllerSuite) TestCutoffRollsBackBeforeBoundary() {
	// 02:00 is before today's 04:00 boundary, so the cutoff is yesterday's
	s.clock.Set(time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC))

	cutoff := s.controller.Cutoff()
	s.Equal(time.Date(2024, 5, 31, 4, 0, 0, 0, time.UTC), cutoff)
}

func (s *ControllerSuite) TestCutoffExactlyAtBoundary() {
	s.clock.Set(time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC))

	cutoff := s.controller.Cutoff()
	s.Equal(time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC), cutoff)
}

// EvictStale tests

func (s *ControllerSuite) TestEvictStaleRemovesEntriesBeforeCutoff() {
	// Joined yesterday evening
	s.clock.Set(time.Date(2024, 5, 31, 22, 0, 0, 0, time.UTC))
	_, _ = s.controller.Join(s.ctx, "12223334455")

	// Joined today
	s.clock.Set(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	_, _ = s.controller.Join(s.ctx, "12223334456")

	removed, err := s.controller.EvictStale(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, waiting, _ := s.controller.Position(s.ctx, "12223334455")
	s.False(waiting)
	pos, _, _ := s.controller.Position(s.ctx, "12223334456")
	s.Equal(1, pos)
}

func (s *ControllerSuite) TestEvictStaleKeepsEntryJoinedAtBoundary() {
	s.clock.Set(time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC))
	_, _ = s.controller.Join(s.ctx, "12223334455")

	s.clock.Set(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	removed, err := s.controller.EvictStale(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, removed)
}

func (s *ControllerSuite) TestEvictStaleBeforeBoundaryKeepsLateNightEntries() {
	// At 02:00 the live window still reaches back to yesterday 04:00
	s.clock.Set(time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC))
	_, _ = s.controller.Join(s.ctx, "12223334455")

	s.clock.Set(time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC))
	removed, err := s.controller.EvictStale(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, removed)
}
