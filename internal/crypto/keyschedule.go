// Package crypto provides the cryptographic core of revery: the SPAKE2
// exchange, the BLAKE3 key schedule, and the deniable chat sealing scheme.
package crypto

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// Key schedule constants. These must match for interoperability.
const (
	// ProtocolTag is the domain separator for the base key.
	ProtocolTag = "revery-v0"
	// ChallengeContext is the domain separator for the auth challenge.
	ChallengeContext = "revery-auth-challenge"

	labelAuthentication = "authentication"
	labelEncryption     = "encryption"
	labelSigning        = "signing"

	// KeySize is the size of every derived subkey.
	KeySize = 32
)

// SessionKeys holds the three domain-separated subkeys for one session.
// SigningKey is reserved by the protocol: derived for wire compatibility,
// never used. All three are overwritten with zeros by Zeroize.
type SessionKeys struct {
	AuthKey       []byte
	EncryptionKey []byte
	SigningKey    []byte
}

// DeriveSessionKeys runs the key schedule:
//
//	base           = BLAKE3(tag || K || address || ts_le8)
//	auth_key       = BLAKE3(base || "authentication")
//	encryption_key = BLAKE3(base || "encryption")
//	signing_key    = BLAKE3(base || "signing")
//
// The shared secret and the intermediate base key are zeroised before
// returning.
func DeriveSessionKeys(sharedSecret []byte, address string, establishedAt uint64) *SessionKeys {
	var tsLE [8]byte
	binary.LittleEndian.PutUint64(tsLE[:], establishedAt)

	h := blake3.New(KeySize, nil)
	h.Write([]byte(ProtocolTag))
	h.Write(sharedSecret)
	h.Write([]byte(address))
	h.Write(tsLE[:])
	base := h.Sum(nil)

	keys := &SessionKeys{
		AuthKey:       deriveSubkey(base, labelAuthentication),
		EncryptionKey: deriveSubkey(base, labelEncryption),
		SigningKey:    deriveSubkey(base, labelSigning),
	}

	Zeroize(base)
	Zeroize(sharedSecret)
	return keys
}

func deriveSubkey(base []byte, label string) []byte {
	h := blake3.New(KeySize, nil)
	h.Write(base)
	h.Write([]byte(label))
	return h.Sum(nil)
}

// AuthChallenge computes the challenge-echo value:
// BLAKE3("revery-auth-challenge" || auth_key).
func AuthChallenge(authKey []byte) [KeySize]byte {
	h := blake3.New(KeySize, nil)
	h.Write([]byte(ChallengeContext))
	h.Write(authKey)
	var out [KeySize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Zeroize overwrites b with zeros.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Zeroize overwrites all three subkeys with zeros. Safe to call more
// than once.
func (k *SessionKeys) Zeroize() {
	if k == nil {
		return
	}
	Zeroize(k.AuthKey)
	Zeroize(k.EncryptionKey)
	Zeroize(k.SigningKey)
}
