package protocol

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"testing"
)

func TestAuthMessageRoundTrip(t *testing.T) {
	pakeMsg := make([]byte, 33)
	rand.Read(pakeMsg)

	tests := []struct {
		name          string
		establishedAt uint64
	}{
		{"creator timestamp", 1723400000},
		{"joiner zero", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &AuthMessage{PakeMessage: pakeMsg, EstablishedAt: tt.establishedAt}
			decoded, err := DecodeAuthMessage(msg.Encode())
			if err != nil {
				t.Fatalf("DecodeAuthMessage failed: %v", err)
			}
			if !bytes.Equal(decoded.PakeMessage, pakeMsg) {
				t.Error("PakeMessage mismatch")
			}
			if decoded.EstablishedAt != tt.establishedAt {
				t.Errorf("EstablishedAt = %d, want %d", decoded.EstablishedAt, tt.establishedAt)
			}
		})
	}
}

func TestDecodeAuthMessageMalformed(t *testing.T) {
	msg := &AuthMessage{PakeMessage: []byte("pake"), EstablishedAt: 7}
	encoded := msg.Encode()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated body", encoded[:len(encoded)-4]},
		{"trailing garbage", append(append([]byte{}, encoded...), 0xFF)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAuthMessage(tt.data); !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestVerificationMessageRoundTrip(t *testing.T) {
	var m VerificationMessage
	rand.Read(m.Challenge[:])

	decoded, err := DecodeVerificationMessage(m.Encode())
	if err != nil {
		t.Fatalf("DecodeVerificationMessage failed: %v", err)
	}
	if decoded.Challenge != m.Challenge {
		t.Error("challenge mismatch")
	}
}

func TestVerificationMessageWrongSize(t *testing.T) {
	for _, n := range []int{0, 31, 33} {
		if _, err := DecodeVerificationMessage(make([]byte, n)); !errors.Is(err, ErrInvalidChallenge) {
			t.Errorf("size %d: error = %v, want ErrInvalidChallenge", n, err)
		}
	}
}

func TestChatPayloadRoundTrip(t *testing.T) {
	encrypted := make([]byte, 128)
	rand.Read(encrypted)

	p := &ChatPayload{
		Sequence:    42,
		Timestamp:   1723400000,
		ContentType: ContentTypeImage,
		Encrypted:   encrypted,
	}
	rand.Read(p.HMAC[:])

	decoded, err := DecodeChatPayload(p.Encode())
	if err != nil {
		t.Fatalf("DecodeChatPayload failed: %v", err)
	}

	if decoded.Sequence != p.Sequence {
		t.Errorf("Sequence = %d, want %d", decoded.Sequence, p.Sequence)
	}
	if decoded.Timestamp != p.Timestamp {
		t.Errorf("Timestamp = %d, want %d", decoded.Timestamp, p.Timestamp)
	}
	if decoded.ContentType != p.ContentType {
		t.Errorf("ContentType = %#x, want %#x", decoded.ContentType, p.ContentType)
	}
	if !bytes.Equal(decoded.Encrypted, p.Encrypted) {
		t.Error("Encrypted mismatch")
	}
	if decoded.HMAC != p.HMAC {
		t.Error("HMAC mismatch")
	}
}

func TestChatPayloadWireLayout(t *testing.T) {
	p := &ChatPayload{
		Sequence:    1,
		Timestamp:   2,
		ContentType: ContentTypeText,
		Encrypted:   []byte{0xAA},
	}
	encoded := p.Encode()

	if got := binary.LittleEndian.Uint64(encoded[0:8]); got != 1 {
		t.Errorf("sequence bytes = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(encoded[8:12]); got != 2 {
		t.Errorf("timestamp bytes = %d, want 2", got)
	}
	if encoded[12] != ContentTypeText {
		t.Errorf("content type byte = %#x", encoded[12])
	}
	if got := binary.LittleEndian.Uint32(encoded[13:17]); got != 1 {
		t.Errorf("enc length = %d, want 1", got)
	}
	if encoded[17] != 0xAA {
		t.Errorf("enc payload byte = %#x", encoded[17])
	}
	if len(encoded) != 17+1+HMACSize {
		t.Errorf("total length = %d", len(encoded))
	}
}

func TestChatPayloadMACInput(t *testing.T) {
	p := &ChatPayload{
		Sequence:    3,
		Timestamp:   4,
		ContentType: ContentTypeImage,
		Encrypted:   []byte{0x01, 0x02},
	}

	want := []byte{
		3, 0, 0, 0, 0, 0, 0, 0, // sequence LE
		4, 0, 0, 0, // timestamp LE
		ContentTypeImage,
		0x01, 0x02, // raw ciphertext, no length prefix
	}
	if !bytes.Equal(p.MACInput(), want) {
		t.Errorf("MACInput = %x, want %x", p.MACInput(), want)
	}
}

func TestDecodeChatPayloadCeiling(t *testing.T) {
	// Valid prefix, then an encrypted-length claim above the ceiling.
	e := &encoder{}
	e.writeUint64(0)
	e.writeUint32(0)
	e.writeUint8(ContentTypeText)
	e.writeUint32(MaxFramePayload + 1)

	if _, err := DecodeChatPayload(e.buf); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("error = %v, want ErrFrameTooLarge", err)
	}
}

func TestDecodeChatPayloadMalformed(t *testing.T) {
	p := &ChatPayload{Sequence: 1, Timestamp: 2, ContentType: 0, Encrypted: []byte("x")}
	encoded := p.Encode()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"missing tag", encoded[:len(encoded)-1]},
		{"trailing garbage", append(append([]byte{}, encoded...), 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeChatPayload(tt.data); !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}
