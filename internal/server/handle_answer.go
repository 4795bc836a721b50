package server

import (
	"errors"
	"net/http"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/catalog"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/quest"
)

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type AnswerResponse struct {
	IsCorrect     bool        `json:"isCorrect"`
	Level         int         `json:"level"`
	PointsAwarded int         `json:"pointsAwarded,omitempty"`
	TotalPoints   int         `json:"totalPoints"`
	Attempts      int         `json:"attempts,omitempty"`
	Hint          string      `json:"hint,omitempty"`
	NextPuzzle    *PuzzleInfo `json:"nextPuzzle"`
	QuestComplete bool        `json:"questComplete"`
}

func handleAnswer(store Store, engine *quest.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		progress, err := store.LoadProgress(r.Context(), team.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		progress = expireOverdue(r.Context(), store, engine, broker, team.ID, progress)

		updated, result, err := engine.Submit(team.ID, progress, req.Answer)
		switch {
		case errors.Is(err, quest.ErrEmptyAnswer):
			writeError(w, http.StatusBadRequest, "answer is required")
			return
		case errors.Is(err, quest.ErrTimeUp):
			writeError(w, http.StatusConflict, "quest time is up")
			return
		case errors.Is(err, quest.ErrNotActive):
			writeError(w, http.StatusConflict, "quest is not active")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := AnswerResponse{
			IsCorrect:   result.Correct,
			Level:       result.Puzzle.Level,
			TotalPoints: updated.TotalPoints,
		}

		if !result.Correct {
			resp.Attempts = result.Attempts
			if result.HintRevealed {
				resp.Hint = result.Puzzle.Hint
			}
			if result.HintRevealed && result.Attempts == cipherquest.HintAttemptThreshold {
				broker.Publish(team.ID, Event{
					Type:     eventHintRevealed,
					Level:    result.Puzzle.Level,
					PuzzleID: result.Puzzle.ID,
				})
			}
			broker.Publish(team.ID, Event{
				Type:     eventWrongAnswer,
				Level:    result.Puzzle.Level,
				PuzzleID: result.Puzzle.ID,
			})
			writeJSON(w, http.StatusOK, resp)
			return
		}

		if err := store.SaveProgress(r.Context(), team.ID, updated); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := store.UpsertLeaderboard(r.Context(), leaderboardEntry(team, updated)); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp.PointsAwarded = result.PointsAwarded
		resp.QuestComplete = result.QuestComplete
		if next, ok := catalog.ByLevel(updated.CurrentLevel); ok {
			resp.NextPuzzle = presentPuzzle(engine, team.ID, updated.CurrentLevel, next)
		}

		broker.Publish(team.ID, Event{
			Type:          eventLevelComplete,
			Level:         result.Puzzle.Level,
			PuzzleID:      result.Puzzle.ID,
			PointsAwarded: result.PointsAwarded,
			TotalPoints:   updated.TotalPoints,
		})
		if result.QuestComplete {
			broker.Publish(team.ID, Event{
				Type:        eventQuestComplete,
				TotalPoints: updated.TotalPoints,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
