package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/poolhall/tablequeue/internal/model"
	"github.com/poolhall/tablequeue/internal/services/orchestrator"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) register(name, contact string) model.Contact {
	p, err := s.app.Registry.Register(s.ctx, name, contact)
	s.Require().NoError(err)
	return p.Contact
}

func (s *IntegrationSuite) dispatch(actor model.Contact, action orchestrator.Action, args map[string]string) orchestrator.Result {
	result, err := s.app.Orchestrator.Dispatch(s.ctx, actor, action, args)
	s.Require().NoError(err)
	return result
}

// Test: A full evening at the table, pool-hall style
func (s *IntegrationSuite) TestFullTableEvening() {
	// Step 1: Everyone registers
	alice := s.register("Alice", "12223334455")
	bob := s.register("Bob", "12223334456")
	carol := s.register("Carol", "12223334457")
	dave := s.register("Dave", "12223334458")

	// Step 2: Alice opens the table against Bob
	result := s.dispatch(alice, orchestrator.ActionStartGame,
		map[string]string{"opponent": "12223334456"})
	s.Equal(orchestrator.CodeOK, result.Code)

	// Step 3: Carol and Dave line up
	result = s.dispatch(carol, orchestrator.ActionJoinQueue, nil)
	s.Equal(orchestrator.CodeOK, result.Code)
	result = s.dispatch(dave, orchestrator.ActionJoinQueue, nil)
	s.Equal(orchestrator.CodeOK, result.Code)

	// Step 4: Alice loses; Bob keeps the table and Carol is called up
	s.app.MockClock.Advance(30 * time.Minute)
	result = s.dispatch(alice, orchestrator.ActionEndMatch, nil)
	s.Equal(orchestrator.CodeOK, result.Code)
	s.Require().NotNil(result.Notification)
	s.Equal(carol, result.Notification.Player.Contact)

	// Step 5: Bob confirms Carol's arrival
	result = s.dispatch(bob, orchestrator.ActionConfirmChallenger, nil)
	s.Equal(orchestrator.CodeOK, result.Code)

	game, err := s.app.MatchController.Active(s.ctx)
	s.Require().NoError(err)
	s.Equal(bob, game.King)
	s.Equal(carol, game.Challenger)

	// Step 6: Alice rejoins the line behind Dave
	result = s.dispatch(alice, orchestrator.ActionJoinQueue, nil)
	s.Equal(orchestrator.CodeOK, result.Code)
	s.Contains(result.Text, "position 2")

	// Step 7: Carol wins; Dave is called, Alice moves up
	s.app.MockClock.Advance(30 * time.Minute)
	result = s.dispatch(bob, orchestrator.ActionEndMatch, nil)
	s.Equal(orchestrator.CodeOK, result.Code)
	s.Require().NotNil(result.Notification)
	s.Equal(dave, result.Notification.Player.Contact)

	result = s.dispatch(alice, orchestrator.ActionCheckPosition, nil)
	s.Contains(result.Text, "position 1")
}

// Test: Tomorrow is a clean slate
func (s *IntegrationSuite) TestNextDayStartsFresh() {
	alice := s.register("Alice", "12223334455")
	bob := s.register("Bob", "12223334456")
	carol := s.register("Carol", "12223334457")

	// Evening: a game runs to completion and a queue entry lingers
	s.dispatch(alice, orchestrator.ActionStartGame, map[string]string{"opponent": "12223334456"})
	s.dispatch(bob, orchestrator.ActionEndMatch, nil)
	s.dispatch(carol, orchestrator.ActionJoinQueue, nil)

	// Next morning, past the cutoff hour, everything is swept
	s.app.MockClock.Set(time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC))

	result := s.dispatch(carol, orchestrator.ActionSeeQueue, nil)
	s.Contains(result.Text, "Nobody")

	// Yesterday's finished game was archived, so a fresh opening game works
	result = s.dispatch(carol, orchestrator.ActionStartGame,
		map[string]string{"opponent": "12223334455"})
	s.Equal(orchestrator.CodeOK, result.Code)
}
