package session

import (
	"errors"
	"io"
	"net"

	"github.com/revery-project/revery/internal/auth"
	"github.com/revery-project/revery/internal/conversation"
	"github.com/revery-project/revery/internal/crypto"
	"github.com/revery-project/revery/pkg/protocol"
)

// ErrNotConnected indicates a send outside the Conversing state.
var ErrNotConnected = errors.New("not connected")

// ErrSessionActive indicates host/join on a controller that already ran.
var ErrSessionActive = errors.New("session already started")

// ErrorKind names an error class for the UI surface.
type ErrorKind string

// Error kinds surfaced to the UI.
const (
	KindTransport       ErrorKind = "TransportError"
	KindFrameTooLarge   ErrorKind = "FrameTooLarge"
	KindMalformed       ErrorKind = "Malformed"
	KindPeerRejected    ErrorKind = "PeerRejected"
	KindAuthFailed      ErrorKind = "AuthFailed"
	KindReplayOrReorder ErrorKind = "ReplayOrReorder"
	KindContentTooLarge ErrorKind = "ContentTooLarge"
	KindClock           ErrorKind = "ClockError"
	KindNotConnected    ErrorKind = "NotConnected"
	KindAuthTimeout     ErrorKind = "AuthTimeout"
)

// Classify maps an error to its kind. Anything not in the protocol
// taxonomy is a transport failure.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, auth.ErrAuthTimeout):
		return KindAuthTimeout
	case errors.Is(err, crypto.ErrAuthFailed):
		return KindAuthFailed
	case errors.Is(err, crypto.ErrPeerRejected):
		return KindPeerRejected
	case errors.Is(err, conversation.ErrReplayOrReorder):
		return KindReplayOrReorder
	case errors.Is(err, conversation.ErrClock):
		return KindClock
	case errors.Is(err, protocol.ErrContentTooLarge):
		return KindContentTooLarge
	case errors.Is(err, protocol.ErrFrameTooLarge):
		return KindFrameTooLarge
	case errors.Is(err, protocol.ErrMalformed),
		errors.Is(err, protocol.ErrUnknownFrameType),
		errors.Is(err, protocol.ErrUnknownContentType),
		errors.Is(err, protocol.ErrInvalidChallenge):
		return KindMalformed
	case errors.Is(err, ErrNotConnected):
		return KindNotConnected
	default:
		return KindTransport
	}
}

// recoverable reports whether a send-path error leaves the session alive.
func recoverable(err error) bool {
	switch Classify(err) {
	case KindContentTooLarge, KindClock, KindNotConnected:
		return true
	default:
		return false
	}
}

// isClosedConn reports whether err is the local side of a deliberate
// close, as opposed to a peer or network failure.
func isClosedConn(err error) bool {
	if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return false
}
