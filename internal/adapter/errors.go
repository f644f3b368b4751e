package adapter

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-team-sync/models"
)

var (
	// ErrUnauthorized and ErrForbidden are fatal: retrying cannot help until
	// the operator supplies new credentials.
	ErrUnauthorized = errors.New("client unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrVersionConflict is matched by every *ConflictError.
	ErrVersionConflict = errors.New("version conflict")

	// ErrBadRequest and ErrNotFound are permanent for the mutation at hand.
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")

	// Retried on the next cycle.
	ErrTransient           = errors.New("transient remote failure")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")

	// ErrRemoteSchema is a response body the client cannot decode. Retrying
	// gets the same body back, so it stops the cycle like an auth failure.
	ErrRemoteSchema = errors.New("remote response does not match its schema")

	ErrUnknownEntityType = errors.New("unknown entity type")
	ErrUnknownMode       = errors.New("unknown adapter mode")
)

// ConflictError reports a lost optimistic lock. Remote carries the winning
// remote state when the backend returned it; callers fetch it otherwise.
type ConflictError struct {
	EntityType string
	ID         string
	Remote     *models.RemoteRecord
	Detail     string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("%s on %s/%s", ErrVersionConflict, e.EntityType, e.ID)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is makes errors.Is(err, ErrVersionConflict) hold for conflicts.
func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// IsFatal reports errors that stop the whole sync cycle.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrRemoteSchema)
}

// IsPermanent reports errors that will fail the same way on every retry of
// the same mutation.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrBadRequest) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnknownEntityType)
}

// IsConflict reports an optimistic lock failure and returns its details.
func IsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
