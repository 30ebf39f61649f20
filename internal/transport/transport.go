// Package transport adapts the anonymising stream transport behind a
// small provider interface: listen and announce an address, connect to an
// address, bidirectional byte stream. The engine never sees anything
// below net.Conn.
package transport

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrClosed indicates the transport or listener was closed.
	ErrClosed = errors.New("transport closed")
	// ErrDialFailed indicates the dial could not be completed.
	ErrDialFailed = errors.New("dial failed")
)

// Provider exposes the external stream transport.
type Provider interface {
	// Listen publishes an endpoint and returns a listener announcing
	// its address.
	Listen(ctx context.Context) (Listener, error)
	// Dial connects to a previously announced address.
	Dial(ctx context.Context, address string) (net.Conn, error)
	// Close releases the provider and any underlying process.
	Close() error
}

// Listener accepts inbound peer connections.
type Listener interface {
	// Address is the announced address peers dial.
	Address() string
	Accept() (net.Conn, error)
	Close() error
}
