package core

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewUserID returns a random user identifier.
func NewUserID() string {
	return uuid.NewString()
}

// NewTransactionID returns a ULID. ULIDs sort by creation time, so they
// order transactions that share a calendar date.
func NewTransactionID() string {
	return ulid.Make().String()
}
