// Package quest implements the game progression state machine: starting,
// resetting, answer evaluation, level transitions, and quest expiry.
// The engine is pure with respect to storage and HTTP — it maps
// (current progress, event) to (new progress, result) and keeps only the
// transient per-puzzle attempt counters in memory. The clock is
// injectable so transitions are deterministic under test.
package quest

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/catalog"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
)

var (
	// ErrEmptyAnswer is returned for blank submissions. No attempt is
	// counted.
	ErrEmptyAnswer = errors.New("empty answer")

	// ErrNotActive is returned when a submission arrives while no quest
	// is running for the team.
	ErrNotActive = errors.New("quest is not active")

	// ErrTimeUp is returned when the quest's time budget has run out.
	ErrTimeUp = errors.New("quest time is up")
)

// Result reports the outcome of one answer submission.
type Result struct {
	Correct       bool
	Puzzle        cipherquest.Puzzle
	PointsAwarded int
	Attempts      int
	HintRevealed  bool
	QuestComplete bool
}

// attemptState tracks consecutive misses on the puzzle a team is
// currently facing. It is transient: never persisted, discarded when the
// level changes or the quest restarts.
type attemptState struct {
	level     int
	misses    int
	hintShown bool
}

// Engine coordinates quest progression for all teams of one process.
type Engine struct {
	now func() time.Time

	mu       sync.Mutex
	attempts map[string]*attemptState
}

// NewEngine returns an engine using the wall clock.
func NewEngine() *Engine {
	return NewEngineWithClock(time.Now)
}

// NewEngineWithClock returns an engine with an injected clock.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{
		now:      now,
		attempts: make(map[string]*attemptState),
	}
}

// Start initializes a fresh quest for the team: level 0, empty completed
// list, zero totals, both timestamps set to now. Calling it on a team
// with existing progress fully resets that progress.
func (e *Engine) Start(teamID string) cipherquest.Progress {
	e.clearAttempts(teamID)
	now := e.now()
	return cipherquest.Progress{
		IsActive:       true,
		CurrentLevel:   0,
		QuestStartedAt: now,
		LevelStartedAt: now,
		CompletedIDs:   []string{},
	}
}

// Reset discards the team's transient attempt state. Clearing the
// persisted progress record is the caller's side of the operation.
func (e *Engine) Reset(teamID string) {
	e.clearAttempts(teamID)
}

// Submit evaluates one answer against the team's current puzzle.
// Correctness is trim + case-insensitive string equality, nothing else.
// On a correct answer the returned progress has the puzzle recorded,
// points and solve time added, and the level advanced; the quest
// deactivates when the last level is solved. On a miss the attempt
// counter bumps and the hint is revealed from the second consecutive
// miss onward.
func (e *Engine) Submit(teamID string, p cipherquest.Progress, rawAnswer string) (cipherquest.Progress, Result, error) {
	if strings.TrimSpace(rawAnswer) == "" {
		return p, Result{}, ErrEmptyAnswer
	}
	if !p.IsActive {
		return p, Result{}, ErrNotActive
	}
	if e.Expired(p) {
		return p, Result{}, ErrTimeUp
	}

	puzzle, ok := catalog.ByLevel(p.CurrentLevel)
	if !ok {
		return p, Result{}, ErrNotActive
	}

	if !AnswersMatch(rawAnswer, puzzle.Answer) {
		attempts, hintShown := e.recordMiss(teamID, p.CurrentLevel, puzzle.Hint != "")
		return p, Result{
			Puzzle:       puzzle,
			Attempts:     attempts,
			HintRevealed: hintShown,
		}, nil
	}

	e.clearAttempts(teamID)

	now := e.now()
	p.CompletedIDs = append(p.CompletedIDs, puzzle.ID)
	p.TotalPoints += puzzle.Points
	p.TotalTime += now.Sub(p.LevelStartedAt)
	p.CurrentLevel++
	p.LevelStartedAt = now

	complete := p.CurrentLevel >= catalog.Size()
	if complete {
		p.IsActive = false
	}

	return p, Result{
		Correct:       true,
		Puzzle:        puzzle,
		PointsAwarded: puzzle.Points,
		QuestComplete: complete,
	}, nil
}

// Expire deactivates the quest, leaving completed levels, points, and
// accumulated time untouched.
func Expire(p cipherquest.Progress) cipherquest.Progress {
	p.IsActive = false
	return p
}

// Expired reports whether an active quest has exhausted its time budget.
func (e *Engine) Expired(p cipherquest.Progress) bool {
	if !p.IsActive {
		return false
	}
	return e.now().Sub(p.QuestStartedAt) >= cipherquest.QuestDuration
}

// Remaining returns the time left on the quest clock, floored at zero.
func (e *Engine) Remaining(p cipherquest.Progress) time.Duration {
	if p.QuestStartedAt.IsZero() {
		return cipherquest.QuestDuration
	}
	left := cipherquest.QuestDuration - e.now().Sub(p.QuestStartedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Status derives the coarse lifecycle state a client should display.
// An active quest past its budget reads as expired even before the
// persisted record catches up.
func (e *Engine) Status(p cipherquest.Progress) cipherquest.Status {
	switch {
	case p.QuestStartedAt.IsZero():
		return cipherquest.StatusNotStarted
	case p.CurrentLevel >= catalog.Size():
		return cipherquest.StatusCompleted
	case p.IsActive && !e.Expired(p):
		return cipherquest.StatusActive
	default:
		return cipherquest.StatusExpired
	}
}

// HintRevealed reports whether the hint for the team's current puzzle
// has been unlocked by repeated misses.
func (e *Engine) HintRevealed(teamID string, level int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.attempts[teamID]
	return ok && st.level == level && st.hintShown
}

// Attempts returns the miss count for the team's current puzzle.
func (e *Engine) Attempts(teamID string, level int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.attempts[teamID]
	if !ok || st.level != level {
		return 0
	}
	return st.misses
}

// AnswersMatch compares a submission to the canonical answer. Leading
// and trailing whitespace is ignored and the comparison is
// case-insensitive; no other normalization is applied.
func AnswersMatch(submitted, canonical string) bool {
	return strings.EqualFold(
		strings.TrimSpace(submitted),
		strings.TrimSpace(canonical),
	)
}

func (e *Engine) recordMiss(teamID string, level int, hasHint bool) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.attempts[teamID]
	if st == nil || st.level != level {
		st = &attemptState{level: level}
		e.attempts[teamID] = st
	}
	st.misses++
	if hasHint && st.misses >= cipherquest.HintAttemptThreshold {
		// One-way for the remainder of this puzzle.
		st.hintShown = true
	}
	return st.misses, st.hintShown
}

func (e *Engine) clearAttempts(teamID string) {
	e.mu.Lock()
	delete(e.attempts, teamID)
	e.mu.Unlock()
}
