package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// NonceSize is the ChaCha20 nonce size.
const NonceSize = chacha20.NonceSize

// ErrAuthFailed indicates an HMAC verification failure.
var ErrAuthFailed = errors.New("authentication failed")

// ChatNonce builds the deterministic chat nonce:
// nonce[0..8] = sequence LE, nonce[8..12] = timestamp LE. The nonce is a
// pure function of public metadata so that anyone holding the keys can
// reproduce it; that reproducibility is what makes transcripts forgeable.
func ChatNonce(sequence uint64, timestamp uint32) [NonceSize]byte {
	var nonce [NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[0:8], sequence)
	binary.LittleEndian.PutUint32(nonce[8:12], timestamp)
	return nonce
}

// ChatCipher seals and opens chat payloads: ChaCha20 keyed by the
// encryption key with the deterministic nonce, HMAC-SHA256 keyed by the
// auth key over the payload metadata and ciphertext.
type ChatCipher struct {
	encryptionKey []byte
	authKey       []byte
}

// NewChatCipher creates a ChatCipher over the two session subkeys. The
// keys are referenced, not copied: zeroising the session keys disables
// the cipher.
func NewChatCipher(encryptionKey, authKey []byte) (*ChatCipher, error) {
	if len(encryptionKey) != KeySize || len(authKey) != KeySize {
		return nil, fmt.Errorf("chat cipher requires %d-byte keys", KeySize)
	}
	return &ChatCipher{
		encryptionKey: encryptionKey,
		authKey:       authKey,
	}, nil
}

// Apply runs the ChaCha20 keystream for (sequence, timestamp) over data.
// Encryption and decryption are the same operation.
func (c *ChatCipher) Apply(data []byte, sequence uint64, timestamp uint32) ([]byte, error) {
	nonce := ChatNonce(sequence, timestamp)
	stream, err := chacha20.NewUnauthenticatedCipher(c.encryptionKey, nonce[:])
	if err != nil {
		return nil, fmt.Errorf("chacha20 init: %w", err)
	}
	out := make([]byte, len(data))
	stream.XORKeyStream(out, data)
	return out, nil
}

// Tag computes the HMAC-SHA256 tag over the MAC input bytes.
func (c *ChatCipher) Tag(macInput []byte) [32]byte {
	mac := hmac.New(sha256.New, c.authKey)
	mac.Write(macInput)
	var tag [32]byte
	mac.Sum(tag[:0])
	return tag
}

// VerifyTag recomputes the tag and compares in constant time. Returns
// ErrAuthFailed on mismatch.
func (c *ChatCipher) VerifyTag(macInput []byte, tag [32]byte) error {
	expected := c.Tag(macInput)
	if !hmac.Equal(expected[:], tag[:]) {
		return ErrAuthFailed
	}
	return nil
}
