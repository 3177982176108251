package rcon

import "errors"

// Package errors are sentinels; failures returned by this package wrap one
// of these and can be classified with [errors.Is].
var (
	// ErrConnectionFailed indicates the TCP stream to the server could not
	// be established: refused, unresolvable, or dial timeout.
	ErrConnectionFailed = errors.New("rcon: connection failed")

	// ErrConnectionClosed indicates the peer closed the stream before a
	// full packet could be read.
	ErrConnectionClosed = errors.New("rcon: connection closed")

	// ErrUnauthorized indicates the server rejected the session password.
	ErrUnauthorized = errors.New("rcon: unauthorized")

	// ErrTimeout indicates a request and response round trip exceeded the
	// session's configured timeout.
	ErrTimeout = errors.New("rcon: request timed out")

	// ErrInvalidState indicates an operation was attempted in a session
	// state that does not permit it, such as running a command before
	// authenticating or after the session was closed.
	ErrInvalidState = errors.New("rcon: invalid session state")
)
