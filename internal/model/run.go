package model

import "time"

// Run statuses.
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// StoredSnapshot is a persisted, encoded SlimSnapshot. Keys are stored as
// hashes only.
type StoredSnapshot struct {
	KeyHash     string    `json:"key_hash" bson:"key_hash"`
	AccountName string    `json:"account_name" bson:"account_name"`
	Data        []byte    `json:"-" bson:"data"`
	FetchedAt   time.Time `json:"fetched_at" bson:"fetched_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// SnapshotMeta describes a stored snapshot without its payload.
type SnapshotMeta struct {
	AccountName string    `json:"accountName"`
	FetchedAt   time.Time `json:"fetchedAt"`
	SizeBytes   int       `json:"sizeBytes"`
}

// CollectionRun records one collection attempt.
type CollectionRun struct {
	ID          string    `json:"id" bson:"_id"`
	KeyHash     string    `json:"key_hash" bson:"key_hash"`
	AccountName string    `json:"account_name,omitempty" bson:"account_name,omitempty"`
	Status      string    `json:"status" bson:"status"`
	Error       string    `json:"error,omitempty" bson:"error,omitempty"`
	Characters  int       `json:"characters" bson:"characters"`
	Items       int       `json:"items" bson:"items"`
	Itemstats   int       `json:"itemstats" bson:"itemstats"`
	DurationMs  int64     `json:"duration_ms" bson:"duration_ms"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
