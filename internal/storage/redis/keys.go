package redis

import (
	"fmt"

	"github.com/poolhall/tablequeue/internal/model"
)

// Key prefix for all table-queue data
const keyPrefix = "tqueue"

// playerKey returns the Redis key for a Player
func playerKey(contact model.Contact) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, contact)
}

// queueKey returns the Redis key holding the singleton queue document
func queueKey() string {
	return fmt.Sprintf("%s:queue", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gameStatusKey returns the Redis key of the index holding the id of the
// unique game with the given non-finished status
func gameStatusKey(status model.GameStatus) string {
	return fmt.Sprintf("%s:idx:game_status:%s", keyPrefix, status)
}

// finishedGamesKey returns the Redis key of the sorted set of finished game
// ids scored by finish time
func finishedGamesKey() string {
	return fmt.Sprintf("%s:idx:finished", keyPrefix)
}
