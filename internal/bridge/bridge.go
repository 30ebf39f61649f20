// Package bridge exposes the engine to a UI shell: a small command
// surface in, a small event vocabulary out. The shapes here are the
// stable contract; internal/session types never cross it.
package bridge

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/revery-project/revery/internal/session"
	"github.com/revery-project/revery/pkg/protocol"
)

// Command names.
const (
	CmdHostSession       = "host_session"
	CmdJoinSession       = "join_session"
	CmdSendMessage       = "send_message"
	CmdDisconnectSession = "disconnect_session"
)

// Event names.
const (
	EventSessionUpdate    = "session_update"
	EventConnectionStatus = "connection_status"
	EventMessageReceived  = "message_received"
	EventMessageSent      = "message_sent"
)

// ErrUnknownCommand indicates a command name outside the surface.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one request from the UI shell. Image content is base64 in
// the Content field.
type Command struct {
	Name        string `json:"command"`
	Secret      string `json:"secret,omitempty"`
	Address     string `json:"address,omitempty"`
	Content     string `json:"content,omitempty"`
	ContentType uint8  `json:"content_type,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
}

// Event is one notification to the UI shell.
type Event struct {
	Name         string `json:"event"`
	Type         string `json:"type,omitempty"`
	Message      string `json:"message,omitempty"`
	State        string `json:"state,omitempty"`
	OnionAddress string `json:"onion_address,omitempty"`
	Content      string `json:"content,omitempty"`
	ContentType  *uint8 `json:"content_type,omitempty"`
}

// Bridge adapts a session controller to the command/event surface.
type Bridge struct {
	ctrl *session.Controller
}

// New creates a bridge over a controller.
func New(ctrl *session.Controller) *Bridge {
	return &Bridge{ctrl: ctrl}
}

// Handle dispatches one command. The session_id argument is accepted for
// interface compatibility; a controller owns a single session.
func (b *Bridge) Handle(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case CmdHostSession:
		return b.ctrl.Host(ctx, []byte(cmd.Secret))
	case CmdJoinSession:
		return b.ctrl.Join(ctx, cmd.Address, []byte(cmd.Secret))
	case CmdSendMessage:
		content, err := decodeContent(cmd)
		if err != nil {
			return err
		}
		return b.ctrl.Send(content)
	case CmdDisconnectSession:
		b.ctrl.Disconnect()
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
}

// Events translates controller updates into bridge events. One update
// can produce both a session_update and a connection_status event.
func Events(u session.Update) []Event {
	var events []Event

	switch u.Type {
	case session.UpdateMessageSent, session.UpdateMessageReceived:
		if u.Content != nil {
			name := EventMessageSent
			if u.Type == session.UpdateMessageReceived {
				name = EventMessageReceived
			}
			contentType := u.Content.Type
			events = append(events, Event{
				Name:        name,
				Content:     encodeContent(*u.Content),
				ContentType: &contentType,
			})
		}
	default:
		events = append(events, Event{
			Name:    EventSessionUpdate,
			Type:    u.Type.String(),
			Message: u.Message,
		})
	}

	if u.Connection != nil {
		events = append(events, Event{
			Name:         EventConnectionStatus,
			State:        u.Connection.State.String(),
			OnionAddress: u.Connection.OnionAddress,
		})
	}
	return events
}

func decodeContent(cmd Command) (protocol.Content, error) {
	switch cmd.ContentType {
	case protocol.ContentTypeText:
		return protocol.TextContent(cmd.Content), nil
	case protocol.ContentTypeImage:
		data, err := base64.StdEncoding.DecodeString(cmd.Content)
		if err != nil {
			return protocol.Content{}, fmt.Errorf("decode image content: %w", err)
		}
		return protocol.ImageContent(data), nil
	default:
		return protocol.Content{}, protocol.ErrUnknownContentType
	}
}

func encodeContent(c protocol.Content) string {
	if c.Type == protocol.ContentTypeImage {
		return base64.StdEncoding.EncodeToString(c.Data)
	}
	return c.Text()
}
