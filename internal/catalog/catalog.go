// Package catalog holds the fixed, ordered list of cipher puzzles.
// The six entries are authored content: ciphertexts and answers are the
// puzzles themselves and must not be altered. The final level's answer
// is deliberately an instruction referencing the first cipher.
package catalog

import "github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"

var puzzles = []cipherquest.Puzzle{
	{
		ID:          "caesar_1",
		Kind:        cipherquest.KindCaesar,
		Level:       1,
		Title:       "The Caesar's Secret",
		Description: "Julius Caesar used this cipher to protect his military communications. Each letter is shifted by a fixed number of positions in the alphabet.",
		Ciphertext:  "KHOOR ZRUOG",
		Answer:      "hello world",
		Hint:        "Try shifting each letter back by 3 positions. A becomes X, B becomes Y, C becomes Z, D becomes A...",
		Points:      100,
	},
	{
		ID:          "morse_1",
		Kind:        cipherquest.KindMorse,
		Level:       2,
		Title:       "Dots and Dashes",
		Description: "Samuel Morse's telegraph code uses dots (.) and dashes (-) to represent letters. Separate letters with spaces.",
		Ciphertext:  ".- -. -.-. .. . -. -",
		Answer:      "ancient",
		Hint:        "A = .-, N = -., C = -.-.  Remember: dot-dash patterns for each letter!",
		Points:      150,
	},
	{
		ID:          "atbash_1",
		Kind:        cipherquest.KindAtbash,
		Level:       3,
		Title:       "Mirror Writing",
		Description: "The Atbash cipher reverses the alphabet: A↔Z, B↔Y, C↔X, and so on. Used in ancient Hebrew texts.",
		Ciphertext:  "HXIVEH",
		Answer:      "sacred",
		Hint:        "A becomes Z, B becomes Y, C becomes X... It's like a mirror reflection of the alphabet.",
		Points:      200,
	},
	{
		ID:          "pigpen_1",
		Kind:        cipherquest.KindPigpen,
		Level:       4,
		Title:       "The Freemason's Code",
		Description: "Also known as the Masonic cipher, letters are replaced by symbols based on their position in a grid.",
		Ciphertext:  "⌞ ⌟ ◢ ⌝ ⌞",
		Answer:      "codes",
		Hint:        "Draw a tic-tac-toe grid and an X. Letters A-I go in the grid (A top-left), J-R in the grid with dots, S-Z in the X shape.",
		Points:      250,
	},
	{
		ID:          "substitution_1",
		Kind:        cipherquest.KindSubstitution,
		Level:       5,
		Title:       "The Great Substitution",
		Description: "Each letter of the alphabet is consistently replaced by another letter. Find the pattern!",
		Ciphertext:  "XOFWFK JCKKFVDK",
		Answer:      "hidden messages",
		Hint:        "Look for common English words and letter patterns. E is the most common letter in English.",
		Points:      300,
	},
	{
		ID:          "combined_final",
		Kind:        cipherquest.KindSubstitution,
		Level:       6,
		Title:       "The Ultimate Challenge",
		Description: "This final cipher combines multiple encryption techniques. You'll need all your skills to crack this ancient secret!",
		Ciphertext:  ".-. ..- -. / - .... . / -.-. .- . ... .- .-. / - .... .-. . .",
		Answer:      "run the caesar three",
		Hint:        "First decode the Morse, then apply what the message tells you to do with another cipher type.",
		Points:      500,
	},
}

// All returns the catalog ordered by level ascending. Index i holds
// level i+1; this ordering is the level sequence.
func All() []cipherquest.Puzzle {
	return puzzles
}

// Size is the number of levels in the quest.
func Size() int {
	return len(puzzles)
}

// ByID looks up a puzzle by its id. The second return is false when no
// puzzle has that id.
func ByID(id string) (cipherquest.Puzzle, bool) {
	for _, p := range puzzles {
		if p.ID == id {
			return p, true
		}
	}
	return cipherquest.Puzzle{}, false
}

// ByLevel returns the puzzle at the given 0-based index.
func ByLevel(index int) (cipherquest.Puzzle, bool) {
	if index < 0 || index >= len(puzzles) {
		return cipherquest.Puzzle{}, false
	}
	return puzzles[index], true
}

// MaxPoints is the sum of all puzzle point values.
func MaxPoints() int {
	total := 0
	for _, p := range puzzles {
		total += p.Points
	}
	return total
}
