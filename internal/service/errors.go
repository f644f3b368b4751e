package service

import "errors"

var (
	// ErrRecordDeleted is returned when a write targets a record whose local
	// delete is still pending.
	ErrRecordDeleted = errors.New("record is deleted locally")

	// ErrRecordNotFound is returned by reads and by update/delete writes for
	// records that are not cached locally.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrRecordExists is returned by creates whose id is already cached.
	ErrRecordExists = errors.New("record already exists")

	// ErrInvalidOperation is returned for mutations with an unknown operation.
	ErrInvalidOperation = errors.New("invalid mutation operation")

	// ErrRemoteSchema marks a pulled record that does not match its entity
	// schema. It puts the session into the error state.
	ErrRemoteSchema = errors.New("remote record does not match its schema")

	// ErrUnknownEntityType is returned for entity types outside the schema set.
	ErrUnknownEntityType = errors.New("unknown entity type")
)
