// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, bearer token
// inspection, and identifier generation.
package utils

import (
	"context"

	"github.com/MKhiriev/go-team-sync/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// SyncTriggerCtxKey is the key used to store what started the current sync
// cycle. Used together with GetSyncTriggerFromContext.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.SyncTriggerCtxKey, models.TriggerManual)
var SyncTriggerCtxKey = contextKey("syncTrigger")

// WithSyncTrigger returns a copy of ctx carrying trigger.
func WithSyncTrigger(ctx context.Context, trigger models.SyncTrigger) context.Context {
	return context.WithValue(ctx, SyncTriggerCtxKey, trigger)
}

// GetSyncTriggerFromContext retrieves the sync trigger from the context.
//
// Returns the trigger and an ok flag:
//   - ok == true : value is found and has the correct type
//   - ok == false: value is missing or has an unexpected type
func GetSyncTriggerFromContext(ctx context.Context) (models.SyncTrigger, bool) {
	trigger, ok := ctx.Value(SyncTriggerCtxKey).(models.SyncTrigger)
	return trigger, ok
}
