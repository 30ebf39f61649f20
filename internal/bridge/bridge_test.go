package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/revery-project/revery/internal/session"
	"github.com/revery-project/revery/internal/transport"
	"github.com/revery-project/revery/pkg/protocol"
)

func newTestBridge() *Bridge {
	return New(session.NewController(session.Config{
		Provider: transport.NewTCPProvider("127.0.0.1:0"),
		Logger:   zerolog.Nop(),
	}))
}

func TestHandleUnknownCommand(t *testing.T) {
	b := newTestBridge()
	err := b.Handle(context.Background(), Command{Name: "reticulate"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Handle error = %v, want ErrUnknownCommand", err)
	}
}

func TestHandleSendWithoutSession(t *testing.T) {
	b := newTestBridge()
	err := b.Handle(context.Background(), Command{
		Name:    CmdSendMessage,
		Content: "hello",
	})
	if !errors.Is(err, session.ErrNotConnected) {
		t.Errorf("Handle error = %v, want ErrNotConnected", err)
	}
}

func TestHandleBadImageContent(t *testing.T) {
	b := newTestBridge()
	err := b.Handle(context.Background(), Command{
		Name:        CmdSendMessage,
		Content:     "not base64 !!!",
		ContentType: protocol.ContentTypeImage,
	})
	if err == nil {
		t.Error("expected error for undecodable image content")
	}
}

func TestHandleDisconnectAlwaysOK(t *testing.T) {
	b := newTestBridge()
	if err := b.Handle(context.Background(), Command{Name: CmdDisconnectSession}); err != nil {
		t.Errorf("disconnect failed: %v", err)
	}
}

func TestEventsForStatusUpdate(t *testing.T) {
	events := Events(session.Update{
		Type:    session.UpdateInfo,
		Message: "waiting for peer",
		Connection: &session.ConnectionStatus{
			State:        session.ConnWaiting,
			OnionAddress: "abc.onion:7358",
		},
	})

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Name != EventSessionUpdate || events[0].Type != "info" || events[0].Message != "waiting for peer" {
		t.Errorf("session_update = %+v", events[0])
	}
	if events[1].Name != EventConnectionStatus || events[1].State != "waiting" || events[1].OnionAddress != "abc.onion:7358" {
		t.Errorf("connection_status = %+v", events[1])
	}
}

func TestEventsForMessages(t *testing.T) {
	text := protocol.TextContent("hello")
	events := Events(session.Update{Type: session.UpdateMessageReceived, Content: &text})
	if len(events) != 1 || events[0].Name != EventMessageReceived || events[0].Content != "hello" {
		t.Errorf("events = %+v", events)
	}
	if events[0].ContentType == nil || *events[0].ContentType != protocol.ContentTypeText {
		t.Error("content_type missing")
	}

	img := protocol.ImageContent([]byte{0x89, 0x50})
	events = Events(session.Update{Type: session.UpdateMessageSent, Content: &img})
	if len(events) != 1 || events[0].Name != EventMessageSent {
		t.Fatalf("events = %+v", events)
	}
	decoded, err := base64.StdEncoding.DecodeString(events[0].Content)
	if err != nil || len(decoded) != 2 {
		t.Errorf("image content = %q", events[0].Content)
	}
}

func TestEventJSONShape(t *testing.T) {
	contentType := protocol.ContentTypeText
	data, err := json.Marshal(Event{
		Name:        EventMessageReceived,
		Content:     "hi",
		ContentType: &contentType,
	})
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["event"] != "message_received" || decoded["content"] != "hi" {
		t.Errorf("json = %s", data)
	}
	if _, ok := decoded["content_type"]; !ok {
		t.Errorf("content_type omitted: %s", data)
	}
}

func TestCommandJSONShape(t *testing.T) {
	var cmd Command
	line := `{"command":"join_session","address":"abc.onion:7358","secret":"hunter2"}`
	if err := json.Unmarshal([]byte(line), &cmd); err != nil {
		t.Fatal(err)
	}
	if cmd.Name != CmdJoinSession || cmd.Address != "abc.onion:7358" || cmd.Secret != "hunter2" {
		t.Errorf("command = %+v", cmd)
	}
}
