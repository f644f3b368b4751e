// Package http implements the local sync control API.
//
// UI processes poll the sync session, trigger manual cycles, inspect the
// mutation queue and requeue dead letters through it. Requests are traced,
// access-logged and recovered before they reach the service layer.
package http
