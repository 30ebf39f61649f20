package session

import (
	"github.com/revery-project/revery/pkg/protocol"
)

// UpdateType tags an update for the UI bridge.
type UpdateType int

// Update types.
const (
	UpdateStatus UpdateType = iota
	UpdateInfo
	UpdateSuccess
	UpdateWarning
	UpdateError
	UpdateDebug
	UpdateMessageSent
	UpdateMessageReceived
)

// String returns the wire name of the update type.
func (t UpdateType) String() string {
	switch t {
	case UpdateStatus:
		return "status"
	case UpdateInfo:
		return "info"
	case UpdateSuccess:
		return "success"
	case UpdateWarning:
		return "warning"
	case UpdateError:
		return "error"
	case UpdateDebug:
		return "debug"
	case UpdateMessageSent:
		return "message_sent"
	case UpdateMessageReceived:
		return "message_received"
	default:
		return "unknown"
	}
}

// ConnectionState is the coarse connection status shown by the UI.
type ConnectionState int

// Connection states.
const (
	ConnDisconnected ConnectionState = iota
	ConnConnecting
	ConnWaiting
	ConnConnected
)

// String returns the wire name of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case ConnDisconnected:
		return "disconnected"
	case ConnConnecting:
		return "connecting"
	case ConnWaiting:
		return "waiting"
	case ConnConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// ConnectionStatus pairs a connection state with the onion address, which
// is set while waiting so the UI can display it.
type ConnectionStatus struct {
	State        ConnectionState
	OnionAddress string
}

// Update is one event emitted by the controller.
type Update struct {
	Type    UpdateType
	Message string
	// Content is set for message_sent / message_received updates.
	Content *protocol.Content
	// Connection is set when the connection status changes.
	Connection *ConnectionStatus
}
