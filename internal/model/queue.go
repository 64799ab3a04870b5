package model

import "time"

// QueueEntry is one waiting player in the queue
type QueueEntry struct {
	Contact  Contact   `json:"contact" bson:"contact"`
	JoinedAt time.Time `json:"joined_at" bson:"joined_at"`
}

// Queue is the single system-wide waiting line, stored as one document.
// Version increments on every mutation so conditional updates can detect
// concurrent writers.
type Queue struct {
	Entries []QueueEntry `json:"entries" bson:"entries"`
	Version int64        `json:"version" bson:"version"`
}

// Position returns the 1-indexed position of a contact, or false if the
// contact is not waiting. Positions are always recomputed from current order.
func (q *Queue) Position(contact Contact) (int, bool) {
	for i, e := range q.Entries {
		if e.Contact == contact {
			return i + 1, true
		}
	}
	return 0, false
}

// Contains reports whether a contact is waiting
func (q *Queue) Contains(contact Contact) bool {
	_, ok := q.Position(contact)
	return ok
}
