package model

import "time"

// Player represents a registered participant. Queue and game membership are
// derived from the queue and games collections rather than stored here, so a
// Player record never goes stale.
type Player struct {
	Contact   Contact   `json:"contact" bson:"contact"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
