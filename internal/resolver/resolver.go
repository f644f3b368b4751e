// Package resolver decides which side survives when a queued local
// mutation and the remote authority disagree about the same entity.
//
// The policy is remote-authoritative: a local change only proceeds when the
// remote has not moved past the version the change was based on. Every
// dropped local change is reported as a [models.DiscardedMutation] so that
// callers can re-apply the intent by hand.
package resolver

import (
	"fmt"

	"github.com/MKhiriev/go-team-sync/models"
)

// Decision is the outcome of a conflict.
type Decision int

const (
	// ApplyLocal keeps the local mutation; it is pushed again against the
	// current remote version.
	ApplyLocal Decision = iota
	// RemoteWins drops the local mutation and adopts the remote state.
	RemoteWins
)

func (d Decision) String() string {
	switch d {
	case ApplyLocal:
		return "apply_local"
	case RemoteWins:
		return "remote_wins"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Discard reasons.
const (
	ReasonRemoteNewer        = "remote version is newer than the local base version"
	ReasonDeletedRemotely    = "record was deleted remotely"
	ReasonIDTaken            = "id already exists remotely"
	ReasonRemoteUpdatedLater = "remote was updated after the local delete"
)

// Resolution is what Resolve returns. Discarded is set exactly when the
// decision is RemoteWins.
type Resolution struct {
	Decision  Decision
	Discarded *models.DiscardedMutation
}

// Resolver applies the conflict policy. The zero value is ready to use.
type Resolver struct{}

// New returns a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve decides between entry and remote, the current remote state
// (nil when the remote has no such record). A remote soft delete counts as
// missing.
func (r *Resolver) Resolve(entry models.MutationEntry, remote *models.RemoteRecord) Resolution {
	if remote != nil && remote.Deleted {
		remote = nil
	}

	switch entry.Operation {
	case models.OperationCreate:
		if remote == nil {
			return Resolution{Decision: ApplyLocal}
		}
		return remoteWins(entry, remote, ReasonIDTaken)

	case models.OperationUpdate:
		if remote == nil {
			return remoteWins(entry, nil, ReasonDeletedRemotely)
		}
		if remote.Version > baseVersion(entry) {
			return remoteWins(entry, remote, ReasonRemoteNewer)
		}
		return Resolution{Decision: ApplyLocal}

	case models.OperationDelete:
		// nothing left to delete: the intent already holds remotely
		if remote == nil {
			return Resolution{Decision: ApplyLocal}
		}
		if remote.UpdatedAt.IsZero() {
			// no remote timestamp to compare: only a remote version past the
			// one the delete was made against beats it
			if remote.Version <= baseVersion(entry) {
				return Resolution{Decision: ApplyLocal}
			}
			return remoteWins(entry, remote, ReasonRemoteUpdatedLater)
		}
		if entry.CreatedAt.After(remote.UpdatedAt) {
			return Resolution{Decision: ApplyLocal}
		}
		return remoteWins(entry, remote, ReasonRemoteUpdatedLater)
	}

	// unknown operations never reach the remote
	return remoteWins(entry, remote, fmt.Sprintf("unsupported operation %q", entry.Operation))
}

func baseVersion(entry models.MutationEntry) int64 {
	if entry.BaseVersion == nil {
		return 0
	}
	return *entry.BaseVersion
}

func remoteWins(entry models.MutationEntry, remote *models.RemoteRecord, reason string) Resolution {
	return Resolution{
		Decision: RemoteWins,
		Discarded: &models.DiscardedMutation{
			Entry:  entry,
			Remote: remote,
			Reason: reason,
		},
	}
}
