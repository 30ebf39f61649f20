// Package auth orchestrates mutual authentication: the SPAKE2 exchange
// followed by a challenge echo proving both sides derived the same keys.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/revery-project/revery/internal/crypto"
	"github.com/revery-project/revery/pkg/protocol"
)

// Role distinguishes the two session ends. The Creator listens, the
// Joiner dials; both hold the same passphrase.
type Role int

// Session roles.
const (
	RoleCreator Role = iota
	RoleJoiner
)

// String returns the role name.
func (r Role) String() string {
	if r == RoleCreator {
		return "creator"
	}
	return "joiner"
}

// DefaultTimeout bounds the PAKE exchange and the challenge echo.
const DefaultTimeout = 60 * time.Second

// ErrAuthTimeout indicates the exchange or echo missed its deadline.
var ErrAuthTimeout = errors.New("authentication timed out")

// Flow is one run of the authentication handshake.
type Flow struct {
	role          Role
	passphrase    []byte
	address       string
	establishedAt uint64
	timeout       time.Duration
	log           zerolog.Logger
}

// Result carries the session keys out of a successful handshake. The
// caller owns the keys and must zeroise them on session end.
type Result struct {
	Keys          *crypto.SessionKeys
	EstablishedAt uint64
}

// NewFlow creates a handshake for one connection. establishedAt is the
// Creator's publish second; the Joiner passes 0 and learns the value from
// the peer's Auth frame.
func NewFlow(role Role, passphrase []byte, address string, establishedAt uint64, log zerolog.Logger) *Flow {
	return &Flow{
		role:          role,
		passphrase:    passphrase,
		address:       address,
		establishedAt: establishedAt,
		timeout:       DefaultTimeout,
		log:           log.With().Str("component", "auth").Str("role", role.String()).Logger(),
	}
}

// SetTimeout overrides the handshake deadline.
func (f *Flow) SetTimeout(d time.Duration) {
	f.timeout = d
}

// Run executes both stages over conn. On any failure every derived key is
// zeroised before returning.
func (f *Flow) Run(conn net.Conn) (*Result, error) {
	if err := conn.SetDeadline(time.Now().Add(f.timeout)); err != nil {
		return nil, fmt.Errorf("set auth deadline: %w", err)
	}
	defer conn.SetDeadline(time.Time{})

	keys, establishedAt, err := f.exchange(conn)
	if err != nil {
		return nil, f.mapTimeout(err)
	}

	if err := f.challengeEcho(conn, keys); err != nil {
		keys.Zeroize()
		return nil, f.mapTimeout(err)
	}

	f.log.Debug().Msg("authentication complete")
	return &Result{Keys: keys, EstablishedAt: establishedAt}, nil
}

// exchange runs the SPAKE2 round trip and derives the session keys.
func (f *Flow) exchange(conn net.Conn) (*crypto.SessionKeys, uint64, error) {
	var pake *crypto.PakeExchange
	if f.role == RoleCreator {
		pake = crypto.NewCreatorExchange(f.passphrase)
	} else {
		pake = crypto.NewJoinerExchange(f.passphrase)
	}

	out := &protocol.AuthMessage{
		PakeMessage:   pake.Outgoing(),
		EstablishedAt: f.establishedAt,
	}

	peerFrame, err := f.roundTrip(conn, protocol.NewFrame(protocol.FrameTypeAuth, out.Encode()))
	if err != nil {
		return nil, 0, err
	}
	if peerFrame.Type != protocol.FrameTypeAuth {
		return nil, 0, protocol.ErrMalformed
	}

	peerAuth, err := protocol.DecodeAuthMessage(peerFrame.Payload)
	if err != nil {
		return nil, 0, err
	}

	secret, err := pake.Finish(peerAuth.PakeMessage)
	if err != nil {
		return nil, 0, err
	}

	// The Creator's publish-time is authoritative on both sides.
	establishedAt := f.establishedAt
	if f.role == RoleJoiner {
		establishedAt = peerAuth.EstablishedAt
	}

	keys := crypto.DeriveSessionKeys(secret, f.address, establishedAt)
	return keys, establishedAt, nil
}

// challengeEcho sends the local challenge and verifies the peer's in
// constant time.
func (f *Flow) challengeEcho(conn net.Conn, keys *crypto.SessionKeys) error {
	challenge := crypto.AuthChallenge(keys.AuthKey)
	out := &protocol.VerificationMessage{Challenge: challenge}

	peerFrame, err := f.roundTrip(conn, protocol.NewFrame(protocol.FrameTypeAuthVerification, out.Encode()))
	if err != nil {
		return err
	}
	if peerFrame.Type != protocol.FrameTypeAuthVerification {
		return protocol.ErrMalformed
	}

	peerVerification, err := protocol.DecodeVerificationMessage(peerFrame.Payload)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(peerVerification.Challenge[:], challenge[:]) != 1 {
		return crypto.ErrAuthFailed
	}
	return nil
}

// roundTrip writes a frame while concurrently reading the peer's, so
// neither side deadlocks however the schedulers interleave.
func (f *Flow) roundTrip(conn net.Conn, out *protocol.Frame) (*protocol.Frame, error) {
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- protocol.WriteFrame(conn, out)
	}()

	peerFrame, err := protocol.ReadFrame(conn)
	if err != nil {
		<-writeErr
		return nil, err
	}
	if err := <-writeErr; err != nil {
		return nil, err
	}
	return peerFrame, nil
}

// mapTimeout converts deadline expiry into ErrAuthTimeout.
func (f *Flow) mapTimeout(err error) error {
	if os.IsTimeout(err) {
		return ErrAuthTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrAuthTimeout
	}
	return err
}
