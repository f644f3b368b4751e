// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// AppBuildInfo carries immutable build-time metadata embedded into binaries.
//
// Values are injected by linker flags and reported by the status API so that
// a monitor can tell which sync daemon build it is talking to.
type AppBuildInfo struct {
	BuildVersion string `json:"build_version"`
	BuildDate    string `json:"build_date"`
	BuildCommit  string `json:"build_commit"`
}

// NewAppBuildInfo constructs [AppBuildInfo], replacing empty values with "N/A".
func NewAppBuildInfo(buildVersion, buildDate, buildCommit string) AppBuildInfo {
	return AppBuildInfo{
		BuildVersion: orNA(buildVersion),
		BuildDate:    orNA(buildDate),
		BuildCommit:  orNA(buildCommit),
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// StatusResponse is the body of GET /api/sync/status.
type StatusResponse struct {
	SyncSession
	UnsyncedRecords int          `json:"unsynced_records"`
	Online          bool         `json:"online"`
	Build           AppBuildInfo `json:"build"`
}

// QueueResponse is the body of GET /api/sync/queue.
type QueueResponse struct {
	Entries []MutationEntry `json:"entries"`
	Length  int             `json:"length"`
}

// DeadLettersResponse is the body of GET /api/sync/dead-letters.
type DeadLettersResponse struct {
	DeadLetters []DeadLetter `json:"dead_letters"`
	Length      int          `json:"length"`
}
