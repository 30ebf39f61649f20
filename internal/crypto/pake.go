package crypto

import (
	"errors"

	"salsa.debian.org/vasudev/gospake2"
)

// SPAKE2 role identities. The Joiner is side A, the Creator side B.
const (
	IdentityJoiner  = "revery-joiner"
	IdentityCreator = "revery-creator"
)

// SharedSecretSize is the size of the PAKE output.
const SharedSecretSize = 32

// ErrPeerRejected indicates the peer's exchange message was malformed or
// off-curve.
var ErrPeerRejected = errors.New("peer rejected: invalid PAKE message")

// PakeExchange is one side of a SPAKE2-Ed25519 exchange. Start the
// exchange with NewCreatorExchange or NewJoinerExchange, send the
// outgoing message, then feed the peer's message to Finish.
type PakeExchange struct {
	state    gospake2.SPAKE2
	outgoing []byte
	done     bool
}

// NewCreatorExchange begins an exchange for the session Creator (side B).
func NewCreatorExchange(passphrase []byte) *PakeExchange {
	state := gospake2.SPAKE2B(
		gospake2.NewPassword(string(passphrase)),
		gospake2.NewIdentityA(IdentityJoiner),
		gospake2.NewIdentityB(IdentityCreator),
	)
	return &PakeExchange{state: state}
}

// NewJoinerExchange begins an exchange for the session Joiner (side A).
func NewJoinerExchange(passphrase []byte) *PakeExchange {
	state := gospake2.SPAKE2A(
		gospake2.NewPassword(string(passphrase)),
		gospake2.NewIdentityA(IdentityJoiner),
		gospake2.NewIdentityB(IdentityCreator),
	)
	return &PakeExchange{state: state}
}

// Outgoing returns the exchange message to send to the peer.
func (p *PakeExchange) Outgoing() []byte {
	if p.outgoing == nil {
		p.outgoing = p.state.Start()
	}
	return p.outgoing
}

// Finish consumes the peer's exchange message and returns the 32-byte
// shared secret. The caller owns the secret and must zeroise it after the
// key schedule has consumed it.
func (p *PakeExchange) Finish(peerMessage []byte) ([]byte, error) {
	if p.done {
		return nil, ErrPeerRejected
	}
	// Start must run before Finish so the local scalar exists.
	p.Outgoing()

	secret, err := p.state.Finish(peerMessage)
	if err != nil {
		return nil, ErrPeerRejected
	}
	p.done = true

	if len(secret) != SharedSecretSize {
		Zeroize(secret)
		return nil, ErrPeerRejected
	}
	return secret, nil
}
