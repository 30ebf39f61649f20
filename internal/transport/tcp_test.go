package transport

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"
)

func TestTCPListenDialRoundTrip(t *testing.T) {
	provider := NewTCPProvider("127.0.0.1:0")
	defer provider.Close()

	listener, err := provider.Listen(context.Background())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer listener.Close()

	if listener.Address() == "" {
		t.Fatal("listener has no address")
	}

	type acceptResult struct {
		conn net.Conn
		err  error
	}
	acceptCh := make(chan acceptResult, 1)
	go func() {
		conn, err := listener.Accept()
		acceptCh <- acceptResult{conn, err}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := provider.Dial(ctx, listener.Address())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	accepted := <-acceptCh
	if accepted.err != nil {
		t.Fatalf("Accept failed: %v", accepted.err)
	}
	defer accepted.conn.Close()

	msg := []byte("ping")
	if _, err := client.Write(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	buf := make([]byte, len(msg))
	if _, err := accepted.conn.Read(buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(buf, msg) {
		t.Errorf("read %q, want %q", buf, msg)
	}
}

func TestTCPListenerCloseIdempotent(t *testing.T) {
	provider := NewTCPProvider("127.0.0.1:0")
	listener, err := provider.Listen(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := listener.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := listener.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, err := listener.Accept(); err == nil {
		t.Error("Accept succeeded on closed listener")
	}
}

func TestConnCloseIdempotent(t *testing.T) {
	provider := NewTCPProvider("127.0.0.1:0")
	listener, err := provider.Listen(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	go listener.Accept()

	conn, err := provider.Dial(context.Background(), listener.Address())
	if err != nil {
		t.Fatal(err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, err := conn.Write([]byte("x")); err == nil {
		t.Error("Write succeeded on closed conn")
	}
	if _, err := conn.Read(make([]byte, 1)); err == nil {
		t.Error("Read succeeded on closed conn")
	}
}

func TestDialRefused(t *testing.T) {
	provider := NewTCPProvider("")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Port 1 is essentially never listening.
	if _, err := provider.Dial(ctx, "127.0.0.1:1"); err == nil {
		t.Error("Dial to dead port succeeded")
	}
}
