package domain

import "context"

// Driver defines the interface for the component owning the control session
// Implementations should handle transport I/O and line dispatch
type Driver interface {
	// Start establishes the session and launches the processing loops.
	// It returns an error if the session cannot be established.
	Start(ctx context.Context) error

	// Stop gracefully tears down the session
	Stop(ctx context.Context) error

	// Events returns a read-only channel that emits a Snapshot
	// whenever an incoming line changed the player state
	Events() <-chan Snapshot

	// Done is closed when the session has terminated, either cleanly
	// (remote close/reset) or through Stop
	Done() <-chan struct{}
}

// Commander accepts command verbs for the remote player
type Commander interface {
	// Enqueue appends a command verb; onResponse is invoked exactly once
	// with the raw data-response line bound to it
	Enqueue(name string, onResponse func(line string) error)
}

// Config defines the interface for application configuration
type Config interface {
	// PlayerAddr returns the host:port of the remote player's
	// control interface
	PlayerAddr() string

	// ListenAddr returns the address the HTTP interface binds to
	ListenAddr() string
}
