package server

import (
	"net/http"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/catalog"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/quest"
)

type QuestStartResponse struct {
	Status           string      `json:"status"`
	CurrentPuzzle    *PuzzleInfo `json:"currentPuzzle"`
	TotalLevels      int         `json:"totalLevels"`
	RemainingSeconds int         `json:"remainingSeconds"`
}

// handleQuestStart begins (or fully restarts) the team's quest. Existing
// progress is discarded: start on a played team is reset-then-start.
func handleQuestStart(store Store, engine *quest.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		progress := engine.Start(team.ID)
		if err := store.SaveProgress(r.Context(), team.ID, progress); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := store.UpsertLeaderboard(r.Context(), leaderboardEntry(team, progress)); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(team.ID, Event{Type: eventQuestStarted})

		first, _ := catalog.ByLevel(0)
		writeJSON(w, http.StatusOK, QuestStartResponse{
			Status:           string(cipherquest.StatusActive),
			CurrentPuzzle:    presentPuzzle(engine, team.ID, 0, first),
			TotalLevels:      catalog.Size(),
			RemainingSeconds: int(engine.Remaining(progress).Seconds()),
		})
	}
}

// handleQuestReset clears the team's persisted progress unconditionally
// and zeroes its leaderboard entry.
func handleQuestReset(store Store, engine *quest.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		engine.Reset(team.ID)
		if err := store.DeleteProgress(r.Context(), team.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := store.UpsertLeaderboard(r.Context(), leaderboardEntry(team, cipherquest.Progress{})); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status": string(cipherquest.StatusNotStarted),
		})
	}
}

// handleQuestExpire is called when the client countdown hits zero. It
// deactivates the quest without touching completed levels, points, or
// time; the one-shot store guard makes repeated calls harmless.
func handleQuestExpire(store Store, engine *quest.Engine, broker *Broker) http.HandlerFunc {
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

		flipped, err := store.ExpireQuest(r.Context(), team.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if flipped {
			broker.Publish(team.ID, Event{Type: eventQuestExpired, TotalPoints: progress.TotalPoints})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":      string(engine.Status(quest.Expire(progress))),
			"totalPoints": progress.TotalPoints,
		})
	}
}

func leaderboardEntry(team cipherquest.Team, p cipherquest.Progress) cipherquest.LeaderboardEntry {
	return cipherquest.LeaderboardEntry{
		TeamID:          team.ID,
		TeamName:        team.Name,
		MemberOne:       team.MemberOne,
		MemberTwo:       team.MemberTwo,
		LevelsCompleted: len(p.CompletedIDs),
		TotalPoints:     p.TotalPoints,
		TotalTime:       p.TotalTime,
	}
}
