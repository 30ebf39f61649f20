package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestPakeAgreement(t *testing.T) {
	passphrase := []byte("hunter2")

	creator := NewCreatorExchange(passphrase)
	joiner := NewJoinerExchange(passphrase)

	creatorSecret, err := creator.Finish(joiner.Outgoing())
	if err != nil {
		t.Fatalf("creator Finish failed: %v", err)
	}
	joinerSecret, err := joiner.Finish(creator.Outgoing())
	if err != nil {
		t.Fatalf("joiner Finish failed: %v", err)
	}

	if len(creatorSecret) != SharedSecretSize {
		t.Fatalf("secret length = %d, want %d", len(creatorSecret), SharedSecretSize)
	}
	if !bytes.Equal(creatorSecret, joinerSecret) {
		t.Error("shared secrets differ with matching passphrases")
	}
}

// SPAKE2 cannot detect a wrong passphrase; the exchange completes and
// the secrets silently differ. The challenge echo is what turns that
// into an authentication failure.
func TestPakeMismatchedPassphrases(t *testing.T) {
	creator := NewCreatorExchange([]byte("a"))
	joiner := NewJoinerExchange([]byte("b"))

	creatorSecret, err := creator.Finish(joiner.Outgoing())
	if err != nil {
		t.Fatalf("creator Finish failed: %v", err)
	}
	joinerSecret, err := joiner.Finish(creator.Outgoing())
	if err != nil {
		t.Fatalf("joiner Finish failed: %v", err)
	}

	if bytes.Equal(creatorSecret, joinerSecret) {
		t.Error("shared secrets equal despite mismatched passphrases")
	}
}

func TestPakeRejectsMalformedPeerMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
	}{
		{"empty", nil},
		{"short", []byte{0x01, 0x02}},
		{"own role byte", nil}, // filled below
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joiner := NewJoinerExchange([]byte("hunter2"))
			msg := tt.msg
			if tt.name == "own role byte" {
				// A side-A message fed back to side A.
				msg = NewJoinerExchange([]byte("hunter2")).Outgoing()
			}
			if _, err := joiner.Finish(msg); !errors.Is(err, ErrPeerRejected) {
				t.Errorf("Finish error = %v, want ErrPeerRejected", err)
			}
		})
	}
}

func TestPakeFinishOnlyOnce(t *testing.T) {
	passphrase := []byte("hunter2")
	creator := NewCreatorExchange(passphrase)
	joiner := NewJoinerExchange(passphrase)

	if _, err := creator.Finish(joiner.Outgoing()); err != nil {
		t.Fatalf("first Finish failed: %v", err)
	}
	if _, err := creator.Finish(joiner.Outgoing()); !errors.Is(err, ErrPeerRejected) {
		t.Errorf("second Finish error = %v, want ErrPeerRejected", err)
	}
}

func TestPakeOutgoingStable(t *testing.T) {
	creator := NewCreatorExchange([]byte("hunter2"))
	first := creator.Outgoing()
	second := creator.Outgoing()
	if !bytes.Equal(first, second) {
		t.Error("Outgoing not stable across calls")
	}
}
