package models

import "time"

// SyncStatus is the state of the process-wide sync session.
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusError   SyncStatus = "error"
)

// SyncSession is a point-in-time copy of the sync session. Only the sync
// engine mutates the live session; everybody else receives copies.
type SyncSession struct {
	Status        SyncStatus `json:"status"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	UnsyncedCount int        `json:"unsynced_count"`
	LastError     string     `json:"last_error,omitempty"`
}

// SyncEvent is published by the sync engine on every status change.
type SyncEvent struct {
	Status   SyncStatus `json:"status"`
	Previous SyncStatus `json:"previous"`
	At       time.Time  `json:"at"`
	Err      string     `json:"error,omitempty"`

	// Discarded lists local mutations dropped by conflict resolution during
	// the cycle that produced this event.
	Discarded []DiscardedMutation `json:"discarded,omitempty"`
}

// DiscardedMutation reports a local change that lost against the remote
// state. Callers may re-apply the intent manually.
type DiscardedMutation struct {
	Entry  MutationEntry `json:"entry"`
	Remote *RemoteRecord `json:"remote,omitempty"`
	Reason string        `json:"reason"`
}

// SyncTrigger names what started a sync attempt.
type SyncTrigger string

const (
	TriggerConnectivity SyncTrigger = "connectivity"
	TriggerTimer        SyncTrigger = "timer"
	TriggerManual       SyncTrigger = "manual"
	TriggerRetry        SyncTrigger = "retry"
)

// SyncResult summarises one sync attempt.
type SyncResult struct {
	// Started is false when another cycle was already in flight.
	Started bool `json:"started"`
	// Aborted is true when the cycle stopped early without advancing
	// the last sync time (offline, or a pull failed).
	Aborted bool `json:"aborted"`

	Pushed       int `json:"pushed"`
	Failed       int `json:"failed"`
	DeadLettered int `json:"dead_lettered"`
	Pulled       int `json:"pulled"`
	Skipped      int `json:"skipped"`

	Discarded []DiscardedMutation `json:"discarded,omitempty"`
	Status    SyncStatus          `json:"status"`
	Err       string              `json:"error,omitempty"`
}
