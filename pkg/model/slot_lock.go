package model

import "time"

// SlotLock is an advisory lock keyed by (doctor, date, time). Acquisition is
// a unique _id insert; a TTL index on expires_at reaps locks leaked by
// crashed requests.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
