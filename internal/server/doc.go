// Package server runs the local status API listener with graceful shutdown.
package server
