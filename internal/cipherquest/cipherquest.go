// Package cipherquest defines the core domain types of the game.
// It has zero external dependencies — everything here is pure Go.
package cipherquest

import "time"

// QuestDuration is the fixed time budget for one quest attempt,
// shared across all six levels.
const QuestDuration = 30 * time.Minute

// HintAttemptThreshold is the number of consecutive misses on the same
// puzzle after which its hint is revealed.
const HintAttemptThreshold = 2

// CipherKind identifies the encoding scheme of a puzzle. The system
// never encodes or decodes anything itself; the kind is display flavor.
type CipherKind string

const (
	KindCaesar       CipherKind = "caesar"
	KindMorse        CipherKind = "morse"
	KindAtbash       CipherKind = "atbash"
	KindPigpen       CipherKind = "pigpen"
	KindSubstitution CipherKind = "substitution"
)

// Team is an immutable identity record created at registration.
type Team struct {
	ID           string
	Name         string
	MemberOne    string
	MemberTwo    string
	SessionToken string
	CreatedAt    time.Time
}

// Puzzle is one entry of the fixed catalog. Ciphertext and Answer are
// authored content and must be preserved exactly as written.
type Puzzle struct {
	ID          string
	Kind        CipherKind
	Level       int // 1-based, determines play order
	Title       string
	Description string
	Ciphertext  string
	Answer      string
	Hint        string
	Points      int
}

// Progress is the mutable per-team play-through state, keyed by team id
// and overwritten on every engine transition.
type Progress struct {
	IsActive       bool
	CurrentLevel   int // 0-based index into the catalog
	QuestStartedAt time.Time
	LevelStartedAt time.Time
	CompletedIDs   []string
	TotalPoints    int
	TotalTime      time.Duration // sum of per-level solve times
}

// Status is the coarse quest lifecycle state derived from Progress.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusExpired    Status = "expired"
)

// LeaderboardEntry is the derived, read-only ranking projection for one
// team. It is recomputed from Team + Progress on every progress change.
type LeaderboardEntry struct {
	TeamID          string
	TeamName        string
	MemberOne       string
	MemberTwo       string
	LevelsCompleted int
	TotalPoints     int
	TotalTime       time.Duration
	UpdatedAt       time.Time
}
