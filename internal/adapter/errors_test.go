package adapter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("push: %w", &ConflictError{EntityType: "players", ID: "p1"})

	assert.True(t, errors.Is(err, ErrVersionConflict))
	assert.Equal(t, "push: version conflict on players/p1", err.Error())

	conflict, ok := IsConflict(err)
	assert.True(t, ok)
	assert.Equal(t, "p1", conflict.ID)
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		fatal     bool
		permanent bool
	}{
		{"unauthorized", fmt.Errorf("x: %w", ErrUnauthorized), true, false},
		{"forbidden", ErrForbidden, true, false},
		{"undecodable body", fmt.Errorf("%w: decode changes response: eof", ErrRemoteSchema), true, false},
		{"bad request", ErrBadRequest, false, true},
		{"not found", ErrNotFound, false, true},
		{"unknown type", ErrUnknownEntityType, false, true},
		{"transient", ErrTransient, false, false},
		{"internal", ErrInternalServerError, false, false},
		{"conflict", &ConflictError{}, false, false},
		{"other", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
			assert.Equal(t, tt.permanent, IsPermanent(tt.err))
		})
	}
}
