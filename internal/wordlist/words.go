// Package wordlist suggests human-conveyable passphrases. A suggestion
// is printed once and never stored; the user still has to pass it to the
// peer out-of-band.
package wordlist

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Words is a curated list of 256 memorable, distinct words. Each word is
// easy to spell, pronounce, and relay over a voice channel.
var Words = []string{
	// Animals
	"alpha", "bear", "cat", "dog", "eagle", "fox", "goat", "hawk",
	"ibis", "jay", "koala", "lion", "moose", "newt", "owl", "panda",
	"quail", "raven", "snake", "tiger", "urchin", "viper", "wolf", "xerus",
	"yak", "zebra", "ape", "bat", "crane", "deer", "elk", "frog",
	// Nature
	"amber", "brook", "cliff", "delta", "ember", "frost", "grove", "hill",
	"isle", "jade", "kelp", "lake", "moss", "north", "ocean", "peak",
	"quartz", "river", "storm", "tide", "umbra", "valley", "wave", "xerox",
	"yield", "zenith", "aurora", "breeze", "canyon", "dune", "east", "fjord",
	// Colors
	"azure", "bronze", "coral", "denim", "ebony", "fawn", "gold", "hazel",
	"indigo", "jet", "khaki", "lime", "maroon", "navy", "olive", "pink",
	"rust", "sage", "tan", "umber", "violet", "wine", "xanadu", "yellow",
	"scarlet", "teal", "plum", "ivory", "cyan", "magenta", "ochre", "silver",
	// Objects
	"arrow", "blade", "crown", "drum", "echo", "flame", "gear", "harp",
	"iron", "jewel", "kite", "lamp", "mirror", "nail", "orb", "prism",
	"quill", "ring", "sword", "torch", "unity", "vault", "wheel", "xray",
	"anchor", "bell", "chain", "compass", "lantern", "shield", "spoon", "candle",
	// Actions
	"blast", "climb", "dash", "drift", "flash", "glide", "hover", "jump",
	"knock", "launch", "march", "nudge", "orbit", "pulse", "quest", "rush",
	"shift", "trace", "twist", "spin", "whirl", "zoom", "bounce", "coast",
	"leap", "roam", "sprint", "swing", "tumble", "wander", "dive", "surge",
	// Food
	"apple", "bread", "cherry", "date", "egg", "fig", "grape", "honey",
	"ice", "jam", "kiwi", "lemon", "mango", "nut", "orange", "peach",
	"rice", "sugar", "tea", "vanilla", "wheat", "yeast", "basil", "cocoa",
	"almond", "butter", "carrot", "lentil", "melon", "pepper", "salt", "toast",
	// Music
	"bass", "chord", "flute", "forte", "groove", "hymn", "jazz", "key",
	"lyric", "melody", "note", "opera", "piano", "rhythm", "scale", "tempo",
	"tune", "verse", "waltz", "aria", "beat", "cello", "duet", "encore",
	"banjo", "bugle", "cadence", "harmony", "lute", "octave", "solo", "organ",
	// Space
	"comet", "cosmos", "earth", "galaxy", "lunar", "mars", "nebula", "nova",
	"plasma", "pluto", "quasar", "rocket", "saturn", "star", "sun", "terra",
	"uranus", "venus", "void", "warp", "meteor", "astro", "beam", "cosmic",
	"apollo", "eclipse", "gravity", "jupiter", "mercury", "neptune", "orion", "zodiac",
}

// DefaultWords is the suggested passphrase length. Four words give 32
// bits of entropy, which the PAKE stretches into a one-shot guess: an
// online attacker gets a single try per connection.
const DefaultWords = 4

// GeneratePassphrase creates a random word passphrase, e.g.
// "amber-koala-rhythm-nova".
func GeneratePassphrase(numWords int) (string, error) {
	if numWords <= 0 {
		numWords = DefaultWords
	}

	words := make([]string, numWords)
	max := big.NewInt(int64(len(Words)))

	for i := 0; i < numWords; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		words[i] = Words[idx.Int64()]
	}

	return strings.Join(words, "-"), nil
}

// EntropyBits reports the entropy of a generated passphrase of numWords
// words.
func EntropyBits(numWords int) int {
	bitsPerWord := 0
	for n := len(Words); n > 1; n >>= 1 {
		bitsPerWord++
	}
	return numWords * bitsPerWord
}
