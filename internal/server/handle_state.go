package server

import (
	"context"
	"net/http"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/catalog"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/quest"
)

type TeamInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MemberOne string `json:"memberOne"`
	MemberTwo string `json:"memberTwo"`
}

// PuzzleInfo is the client-facing view of the current puzzle. The
// canonical answer never leaves the server; the hint appears only once
// revealed by repeated misses.
type PuzzleInfo struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Level       int    `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Ciphertext  string `json:"ciphertext"`
	Points      int    `json:"points"`
	Hint        string `json:"hint,omitempty"`
	Attempts    int    `json:"attempts"`
}

type QuestStateResponse struct {
	Status           string      `json:"status"`
	Team             TeamInfo    `json:"team"`
	CurrentPuzzle    *PuzzleInfo `json:"currentPuzzle"`
	CompletedIDs     []string    `json:"completedIds"`
	LevelsCompleted  int         `json:"levelsCompleted"`
	TotalLevels      int         `json:"totalLevels"`
	TotalPoints      int         `json:"totalPoints"`
	MaxPoints        int         `json:"maxPoints"`
	TotalTimeMS      int64       `json:"totalTimeMs"`
	RemainingSeconds int         `json:"remainingSeconds"`
}

func handleQuestState(store Store, engine *quest.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		progress, err := store.LoadProgress(r.Context(), team.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		progress = expireOverdue(r.Context(), store, engine, broker, team.ID, progress)

		status := engine.Status(progress)

		var current *PuzzleInfo
		if status == cipherquest.StatusActive {
			if p, ok := catalog.ByLevel(progress.CurrentLevel); ok {
				current = presentPuzzle(engine, team.ID, progress.CurrentLevel, p)
			}
		}

		resp := QuestStateResponse{
			Status:           string(status),
			Team:             teamInfo(team),
			CurrentPuzzle:    current,
			CompletedIDs:     progress.CompletedIDs,
			LevelsCompleted:  len(progress.CompletedIDs),
			TotalLevels:      catalog.Size(),
			TotalPoints:      progress.TotalPoints,
			MaxPoints:        catalog.MaxPoints(),
			TotalTimeMS:      progress.TotalTime.Milliseconds(),
			RemainingSeconds: int(engine.Remaining(progress).Seconds()),
		}
		if resp.CompletedIDs == nil {
			resp.CompletedIDs = []string{}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func teamInfo(t cipherquest.Team) TeamInfo {
	return TeamInfo{
		ID:        t.ID,
		Name:      t.Name,
		MemberOne: t.MemberOne,
		MemberTwo: t.MemberTwo,
	}
}

func presentPuzzle(engine *quest.Engine, teamID string, level int, p cipherquest.Puzzle) *PuzzleInfo {
	info := &PuzzleInfo{
		ID:          p.ID,
		Kind:        string(p.Kind),
		Level:       p.Level,
		Title:       p.Title,
		Description: p.Description,
		Ciphertext:  p.Ciphertext,
		Points:      p.Points,
		Attempts:    engine.Attempts(teamID, level),
	}
	if engine.HintRevealed(teamID, level) {
		info.Hint = p.Hint
	}
	return info
}

// expireOverdue applies the lazy timeout check: an active quest whose
// 30-minute budget has run out is deactivated before the caller looks
// at it. The store's one-shot guard keeps the expiry event from firing
// more than once across concurrent readers.
func expireOverdue(ctx context.Context, store Store, engine *quest.Engine, broker *Broker, teamID string, p cipherquest.Progress) cipherquest.Progress {
	if !engine.Expired(p) {
		return p
	}
	flipped, err := store.ExpireQuest(ctx, teamID)
	if err == nil && flipped {
		broker.Publish(teamID, Event{Type: eventQuestExpired, TotalPoints: p.TotalPoints})
	}
	return quest.Expire(p)
}
