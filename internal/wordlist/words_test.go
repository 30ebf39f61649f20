package wordlist

import (
	"strings"
	"testing"
)

func TestWordListSize(t *testing.T) {
	if len(Words) != 256 {
		t.Errorf("word list has %d entries, want 256", len(Words))
	}

	seen := make(map[string]bool)
	for _, w := range Words {
		if seen[w] {
			t.Errorf("duplicate word %q", w)
		}
		seen[w] = true
		if w != strings.ToLower(w) {
			t.Errorf("word %q not lowercase", w)
		}
	}
}

func TestGeneratePassphrase(t *testing.T) {
	wordSet := make(map[string]bool)
	for _, w := range Words {
		wordSet[w] = true
	}

	tests := []struct {
		name      string
		numWords  int
		wantWords int
	}{
		{"default on zero", 0, DefaultWords},
		{"default on negative", -1, DefaultWords},
		{"three", 3, 3},
		{"six", 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phrase, err := GeneratePassphrase(tt.numWords)
			if err != nil {
				t.Fatalf("GeneratePassphrase failed: %v", err)
			}

			parts := strings.Split(phrase, "-")
			if len(parts) != tt.wantWords {
				t.Errorf("got %d words, want %d", len(parts), tt.wantWords)
			}
			for _, p := range parts {
				if !wordSet[p] {
					t.Errorf("word %q not in list", p)
				}
			}
		})
	}
}

func TestEntropyBits(t *testing.T) {
	if got := EntropyBits(4); got != 32 {
		t.Errorf("EntropyBits(4) = %d, want 32", got)
	}
	if got := EntropyBits(1); got != 8 {
		t.Errorf("EntropyBits(1) = %d, want 8", got)
	}
}
