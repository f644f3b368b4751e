// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync daemon runtime.
//
// It wires the local store, the remote adapter, connectivity tracking, the
// sync services and the status API into a single process lifecycle.
package client
