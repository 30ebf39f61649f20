package protocol

import (
	"errors"
)

// HMACSize is the size of the chat payload authentication tag.
const HMACSize = 32

// ChallengeSize is the size of the auth verification challenge.
const ChallengeSize = 32

// ErrInvalidChallenge indicates an AuthVerification payload of the wrong size.
var ErrInvalidChallenge = errors.New("invalid challenge length")

// AuthMessage is the payload of an Auth frame: the sender's SPAKE2
// exchange message plus the Creator's publish timestamp. The Joiner does
// not know the timestamp and sends 0; both sides key-schedule with the
// Creator's value.
type AuthMessage struct {
	PakeMessage   []byte
	EstablishedAt uint64
}

// Encode serializes an AuthMessage.
func (m *AuthMessage) Encode() []byte {
	e := &encoder{}
	e.writeBytes(m.PakeMessage)
	e.writeUint64(m.EstablishedAt)
	return e.buf
}

// DecodeAuthMessage deserializes an AuthMessage.
func DecodeAuthMessage(data []byte) (*AuthMessage, error) {
	d := &decoder{buf: data}

	pakeMsg, err := d.readBytes()
	if err != nil {
		return nil, err
	}
	establishedAt, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	if d.remaining() != 0 {
		return nil, ErrMalformed
	}

	return &AuthMessage{
		PakeMessage:   pakeMsg,
		EstablishedAt: establishedAt,
	}, nil
}

// VerificationMessage is the payload of an AuthVerification frame:
// exactly the 32-byte challenge value.
type VerificationMessage struct {
	Challenge [ChallengeSize]byte
}

// Encode serializes a VerificationMessage.
func (m *VerificationMessage) Encode() []byte {
	out := make([]byte, ChallengeSize)
	copy(out, m.Challenge[:])
	return out
}

// DecodeVerificationMessage deserializes a VerificationMessage.
func DecodeVerificationMessage(data []byte) (*VerificationMessage, error) {
	if len(data) != ChallengeSize {
		return nil, ErrInvalidChallenge
	}
	var m VerificationMessage
	copy(m.Challenge[:], data)
	return &m, nil
}

// ChatPayload is the payload of a Chat frame.
type ChatPayload struct {
	Sequence    uint64
	Timestamp   uint32
	ContentType uint8
	Encrypted   []byte
	HMAC        [HMACSize]byte
}

// Encode serializes a ChatPayload.
func (p *ChatPayload) Encode() []byte {
	e := &encoder{}
	e.writeUint64(p.Sequence)
	e.writeUint32(p.Timestamp)
	e.writeUint8(p.ContentType)
	e.writeBytes(p.Encrypted)
	e.buf = append(e.buf, p.HMAC[:]...)
	return e.buf
}

// DecodeChatPayload deserializes a ChatPayload. An encrypted-payload
// length above MaxFramePayload is refused before allocation.
func DecodeChatPayload(data []byte) (*ChatPayload, error) {
	d := &decoder{buf: data}

	sequence, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	timestamp, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	contentType, err := d.readUint8()
	if err != nil {
		return nil, err
	}
	encrypted, err := d.readBytes()
	if err != nil {
		return nil, err
	}
	mac, err := d.readRaw(HMACSize)
	if err != nil {
		return nil, err
	}
	if d.remaining() != 0 {
		return nil, ErrMalformed
	}

	p := &ChatPayload{
		Sequence:    sequence,
		Timestamp:   timestamp,
		ContentType: contentType,
		Encrypted:   encrypted,
	}
	copy(p.HMAC[:], mac)
	return p, nil
}

// MACInput returns the byte sequence the chat HMAC is computed over:
// sequence_le || timestamp_le || content_type || enc_payload.
func (p *ChatPayload) MACInput() []byte {
	e := &encoder{}
	e.writeUint64(p.Sequence)
	e.writeUint32(p.Timestamp)
	e.writeUint8(p.ContentType)
	e.buf = append(e.buf, p.Encrypted...)
	return e.buf
}
