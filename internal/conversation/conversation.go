// Package conversation implements the sequenced, encrypted chat channel
// that runs after authentication. Payloads are sealed with ChaCha20 under
// a nonce derived from (sequence, timestamp) and tagged with HMAC-SHA256;
// anyone holding the session keys can produce equally valid payloads,
// which is the point.
package conversation

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/revery-project/revery/internal/crypto"
	"github.com/revery-project/revery/pkg/protocol"
)

var (
	// ErrReplayOrReorder indicates a chat frame whose sequence is not
	// the expected next one.
	ErrReplayOrReorder = errors.New("sequence mismatch: replay or reorder")
	// ErrClock indicates the current Unix second does not fit in a u32.
	// The message is not sent; a truncated timestamp never goes on the
	// wire.
	ErrClock = errors.New("clock overflow: timestamp exceeds u32 range")
)

// chatOverhead is the fixed size a sealed chat payload adds around the
// ciphertext: sequence, timestamp, content type, length prefix, tag.
const chatOverhead = 8 + 4 + 1 + 4 + protocol.HMACSize

// Seal encrypts and tags content for (sequence, timestamp). Exported so a
// holder of the keys can construct payloads independently of a live
// conversation.
func Seal(cipher *crypto.ChatCipher, sequence uint64, timestamp uint32, content protocol.Content) (*protocol.ChatPayload, error) {
	encrypted, err := cipher.Apply(content.Data, sequence, timestamp)
	if err != nil {
		return nil, err
	}

	payload := &protocol.ChatPayload{
		Sequence:    sequence,
		Timestamp:   timestamp,
		ContentType: content.Type,
		Encrypted:   encrypted,
	}
	payload.HMAC = cipher.Tag(payload.MACInput())
	return payload, nil
}

// Open verifies and decrypts a sealed payload. The tag is checked in
// constant time before anything else; sequence policy is the caller's.
func Open(cipher *crypto.ChatCipher, payload *protocol.ChatPayload) (protocol.Content, error) {
	if err := cipher.VerifyTag(payload.MACInput(), payload.HMAC); err != nil {
		return protocol.Content{}, err
	}

	plaintext, err := cipher.Apply(payload.Encrypted, payload.Sequence, payload.Timestamp)
	if err != nil {
		return protocol.Content{}, err
	}

	return protocol.Content{Type: payload.ContentType, Data: plaintext}, nil
}

// Conversation is one direction-pair of sequenced chat over a stream.
// Sends are serialised by an internal mutex; Receive must be driven from
// a single loop.
type Conversation struct {
	sendMu  sync.Mutex
	rw      io.ReadWriter
	cipher  *crypto.ChatCipher
	sendSeq uint64
	recvSeq uint64
	now     func() time.Time
}

// New creates a conversation over rw using the session keys.
func New(rw io.ReadWriter, keys *crypto.SessionKeys) (*Conversation, error) {
	cipher, err := crypto.NewChatCipher(keys.EncryptionKey, keys.AuthKey)
	if err != nil {
		return nil, err
	}
	return &Conversation{
		rw:     rw,
		cipher: cipher,
		now:    time.Now,
	}, nil
}

// Send seals content and writes one Chat frame. The send sequence
// advances together with a successful frame write and is never rolled
// back.
func (c *Conversation) Send(content protocol.Content) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if err := content.Validate(); err != nil {
		return err
	}
	if len(content.Data)+chatOverhead > protocol.MaxFramePayload {
		return protocol.ErrContentTooLarge
	}

	unix := c.now().Unix()
	if unix < 0 || unix > math.MaxUint32 {
		return ErrClock
	}

	payload, err := Seal(c.cipher, c.sendSeq, uint32(unix), content)
	if err != nil {
		return err
	}

	frame := protocol.NewFrame(protocol.FrameTypeChat, payload.Encode())
	if err := protocol.WriteFrame(c.rw, frame); err != nil {
		return fmt.Errorf("write chat frame: %w", err)
	}

	c.sendSeq++
	return nil
}

// Receive reads one Chat frame, verifies it, and returns the content.
// The receive sequence advances only after the frame fully verifies, so
// a corrupt or hostile peer halts the session rather than desyncing it.
func (c *Conversation) Receive() (protocol.Content, error) {
	frame, err := protocol.ReadFrame(c.rw)
	if err != nil {
		return protocol.Content{}, err
	}
	if frame.Type != protocol.FrameTypeChat {
		return protocol.Content{}, protocol.ErrMalformed
	}

	payload, err := protocol.DecodeChatPayload(frame.Payload)
	if err != nil {
		return protocol.Content{}, err
	}

	if err := c.cipher.VerifyTag(payload.MACInput(), payload.HMAC); err != nil {
		return protocol.Content{}, err
	}
	if payload.Sequence != c.recvSeq {
		return protocol.Content{}, ErrReplayOrReorder
	}

	plaintext, err := c.cipher.Apply(payload.Encrypted, payload.Sequence, payload.Timestamp)
	if err != nil {
		return protocol.Content{}, err
	}
	content := protocol.Content{Type: payload.ContentType, Data: plaintext}
	if err := content.Validate(); err != nil {
		return protocol.Content{}, err
	}

	c.recvSeq++
	return content, nil
}

// SendSequence returns the number of successful sends.
func (c *Conversation) SendSequence() uint64 {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sendSeq
}

// RecvSequence returns the number of successful receives.
func (c *Conversation) RecvSequence() uint64 {
	return c.recvSeq
}
