// Package session glues transport, auth flow and conversation into the
// top-level state machine and emits the update stream the UI consumes.
// A controller owns exactly one session: its transport handle, its keys
// and both sequence counters. Nothing is shared between sessions and
// nothing touches disk.
package session

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/revery-project/revery/internal/auth"
	"github.com/revery-project/revery/internal/conversation"
	"github.com/revery-project/revery/internal/crypto"
	"github.com/revery-project/revery/internal/transport"
	"github.com/revery-project/revery/pkg/protocol"
)

// State is the controller's lifecycle state.
type State int

// Controller states.
const (
	StateIdle State = iota
	StateListening
	StateDialing
	StateAuthenticating
	StateConversing
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateDialing:
		return "dialing"
	case StateAuthenticating:
		return "authenticating"
	case StateConversing:
		return "conversing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Default deadlines. The dial allows for circuit construction; reads
// during Conversing have no deadline at all.
const (
	DefaultDialTimeout = 120 * time.Second
	updateBuffer       = 64
)

// Config configures a controller.
type Config struct {
	Provider    transport.Provider
	Logger      zerolog.Logger
	AuthTimeout time.Duration
	DialTimeout time.Duration
}

// Controller drives one session from Idle to Closed.
type Controller struct {
	cfg Config
	log zerolog.Logger

	mu       sync.Mutex
	state    State
	listener transport.Listener
	conn     net.Conn
	conv     *conversation.Conversation
	keys     *crypto.SessionKeys
	address  string

	updates chan Update

	sentMessages uint64
	recvMessages uint64
	sentBytes    uint64
	recvBytes    uint64
}

// NewController creates an idle controller.
func NewController(cfg Config) *Controller {
	if cfg.AuthTimeout == 0 {
		cfg.AuthTimeout = auth.DefaultTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	return &Controller{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("component", "session").Logger(),
		state:   StateIdle,
		updates: make(chan Update, updateBuffer),
	}
}

// Updates returns the controller's event stream.
func (c *Controller) Updates() <-chan Update {
	return c.updates
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Address returns the session's transport address, once known.
func (c *Controller) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// Host publishes an endpoint and waits for a peer, acting as Creator.
// Returns once the endpoint is announced; authentication runs in the
// background and progress is reported through Updates.
func (c *Controller) Host(ctx context.Context, passphrase []byte) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.state = StateListening
	c.mu.Unlock()

	c.emit(Update{Type: UpdateStatus, Message: "publishing endpoint"})

	listener, err := c.cfg.Provider.Listen(ctx)
	if err != nil {
		c.fail(fmt.Errorf("listen: %w", err))
		return err
	}

	address := CanonicalAddress(listener.Address())
	establishedAt := uint64(time.Now().Unix())

	c.mu.Lock()
	c.listener = listener
	c.address = address
	c.mu.Unlock()

	c.log.Info().Str("address", address).Msg("listening")
	c.emit(Update{
		Type:       UpdateInfo,
		Message:    "waiting for peer",
		Connection: &ConnectionStatus{State: ConnWaiting, OnionAddress: address},
	})

	go c.acceptLoop(listener, passphrase, establishedAt)
	return nil
}

// Join dials an announced address, acting as Joiner. Returns once the
// dial has been started; progress is reported through Updates.
func (c *Controller) Join(ctx context.Context, address string, passphrase []byte) error {
	address = CanonicalAddress(address)

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.state = StateDialing
	c.address = address
	c.mu.Unlock()

	c.emit(Update{
		Type:       UpdateStatus,
		Message:    "connecting",
		Connection: &ConnectionStatus{State: ConnConnecting},
	})

	go func() {
		dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
		defer cancel()

		conn, err := c.cfg.Provider.Dial(dialCtx, address)
		if err != nil {
			c.fail(fmt.Errorf("dial: %w", err))
			return
		}
		c.runSession(conn, auth.RoleJoiner, passphrase, 0)
	}()
	return nil
}

// Send transmits one chat payload. Content and clock errors are
// recoverable and leave the session in Conversing; transport errors are
// fatal.
func (c *Controller) Send(content protocol.Content) error {
	c.mu.Lock()
	if c.state != StateConversing {
		c.mu.Unlock()
		c.emit(Update{Type: UpdateWarning, Message: string(KindNotConnected)})
		return ErrNotConnected
	}
	conv := c.conv
	c.mu.Unlock()

	if err := conv.Send(content); err != nil {
		if recoverable(err) {
			c.emit(Update{Type: UpdateWarning, Message: string(Classify(err))})
			return err
		}
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.sentMessages++
	c.sentBytes += uint64(len(content.Data))
	c.mu.Unlock()

	c.emit(Update{Type: UpdateMessageSent, Content: &content})
	return nil
}

// Disconnect tears the session down. Idempotent; transitions to Closed
// from any state and zeroises all key material.
func (c *Controller) Disconnect() {
	if c.teardown() {
		c.emit(Update{
			Type:       UpdateStatus,
			Message:    "disconnected",
			Connection: &ConnectionStatus{State: ConnDisconnected},
		})
	}
}

// acceptLoop waits for the single peer connection. Accept errors while
// listening are non-fatal: the loop re-enters accept, throttled so a
// flapping transport cannot spin.
func (c *Controller) acceptLoop(listener transport.Listener, passphrase []byte, establishedAt uint64) {
	limiter := rate.NewLimiter(rate.Every(time.Second), 3)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if c.State() != StateListening {
				return
			}
			c.log.Warn().Err(err).Msg("accept failed, re-listening")
			c.emit(Update{Type: UpdateWarning, Message: "accept failed, still waiting"})
			if err := limiter.Wait(context.Background()); err != nil {
				return
			}
			continue
		}

		// One peer per session; stop announcing.
		listener.Close()
		c.runSession(conn, auth.RoleCreator, passphrase, establishedAt)
		return
	}
}

// runSession authenticates the connection and, on success, enters
// Conversing and drives the receive loop until the session ends.
func (c *Controller) runSession(conn net.Conn, role auth.Role, passphrase []byte, establishedAt uint64) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.state = StateAuthenticating
	c.conn = conn
	address := c.address
	c.mu.Unlock()

	c.emit(Update{Type: UpdateStatus, Message: "authenticating"})

	flow := auth.NewFlow(role, passphrase, address, establishedAt, c.log)
	flow.SetTimeout(c.cfg.AuthTimeout)

	result, err := flow.Run(conn)
	if err != nil {
		c.fail(err)
		return
	}

	conv, err := conversation.New(conn, result.Keys)
	if err != nil {
		result.Keys.Zeroize()
		c.fail(err)
		return
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		result.Keys.Zeroize()
		return
	}
	c.state = StateConversing
	c.keys = result.Keys
	c.conv = conv
	c.mu.Unlock()

	c.log.Info().Str("role", role.String()).Msg("secure channel established")
	c.emit(Update{
		Type:       UpdateSuccess,
		Message:    "secure channel established",
		Connection: &ConnectionStatus{State: ConnConnected},
	})

	c.receiveLoop(conv)
}

// receiveLoop is the session's single reader. Any receive error during
// Conversing is fatal; a read failing because Disconnect closed the
// stream ends the loop quietly.
func (c *Controller) receiveLoop(conv *conversation.Conversation) {
	for {
		content, err := conv.Receive()
		if err != nil {
			if c.State() == StateClosed && isClosedConn(err) {
				return
			}
			c.fail(err)
			return
		}

		c.mu.Lock()
		c.recvMessages++
		c.recvBytes += uint64(len(content.Data))
		c.mu.Unlock()

		c.emit(Update{Type: UpdateMessageReceived, Content: &content})
	}
}

// fail converts a fatal error into the Closed(Error) transition with a
// single error update.
func (c *Controller) fail(err error) {
	if !c.teardown() {
		return
	}
	kind := Classify(err)
	c.log.Error().Err(err).Str("kind", string(kind)).Msg("session failed")
	c.emit(Update{
		Type:       UpdateError,
		Message:    string(kind),
		Connection: &ConnectionStatus{State: ConnDisconnected},
	})
}

// teardown moves to Closed exactly once: drops the transport, zeroises
// keys, forgets the address. Returns false if already closed.
func (c *Controller) teardown() bool {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return false
	}
	c.state = StateClosed

	listener := c.listener
	conn := c.conn
	keys := c.keys
	c.listener = nil
	c.conn = nil
	c.conv = nil
	c.keys = nil
	c.address = ""

	sent, recv := c.sentMessages, c.recvMessages
	sentB, recvB := c.sentBytes, c.recvBytes
	c.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	if conn != nil {
		conn.Close()
	}
	keys.Zeroize()

	c.log.Debug().
		Uint64("messages_sent", sent).
		Uint64("messages_received", recv).
		Uint64("bytes_sent", sentB).
		Uint64("bytes_received", recvB).
		Msg("session closed")
	return true
}

// emit delivers an update without ever blocking the engine. If the
// consumer has fallen updateBuffer behind, the update is dropped.
func (c *Controller) emit(u Update) {
	select {
	case c.updates <- u:
	default:
		c.log.Debug().Str("type", u.Type.String()).Msg("update dropped, consumer behind")
	}
}

// CanonicalAddress normalises a transport address so both ends feed the
// same bytes into the key schedule.
func CanonicalAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
