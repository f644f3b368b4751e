// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/go-team-sync/internal/adapter"
	"github.com/MKhiriev/go-team-sync/models"
)

// pushFailure is how the push phase treats a remote error.
type pushFailure int

const (
	// failureTransient keeps the entry queued and counts an attempt.
	failureTransient pushFailure = iota
	// failurePermanent dead-letters the entry at once.
	failurePermanent
	// failureFatal stops the cycle and puts the session into error.
	failureFatal
	// failureConflict hands the entry to the resolver.
	failureConflict
)

func (f pushFailure) String() string {
	switch f {
	case failurePermanent:
		return "permanent"
	case failureFatal:
		return "fatal"
	case failureConflict:
		return "conflict"
	default:
		return "transient"
	}
}

// classifyPushError maps an adapter error onto the push outcome for entry.
// A missing record on update is a conflict with a deleted remote.
func classifyPushError(entry models.MutationEntry, err error) pushFailure {
	switch {
	case adapter.IsFatal(err):
		return failureFatal
	case errors.Is(err, adapter.ErrVersionConflict):
		return failureConflict
	case entry.Operation == models.OperationUpdate && errors.Is(err, adapter.ErrNotFound):
		return failureConflict
	case adapter.IsPermanent(err):
		return failurePermanent
	default:
		return failureTransient
	}
}
