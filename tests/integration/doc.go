// Package integration runs the bot against real databases started with
// testcontainers and checks what the seen store persisted.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration
