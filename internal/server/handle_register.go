package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
)

type RegisterRequest struct {
	TeamName  string `json:"teamName"`
	MemberOne string `json:"memberOne"`
	MemberTwo string `json:"memberTwo"`
}

type RegisterResponse struct {
	Token     string `json:"token"`
	TeamID    string `json:"teamId"`
	TeamName  string `json:"teamName"`
	MemberOne string `json:"memberOne"`
	MemberTwo string `json:"memberTwo"`
	CreatedAt string `json:"createdAt"`
}

func handleRegister(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.TeamName = strings.TrimSpace(req.TeamName)
		req.MemberOne = strings.TrimSpace(req.MemberOne)
		req.MemberTwo = strings.TrimSpace(req.MemberTwo)
		if req.TeamName == "" || req.MemberOne == "" || req.MemberTwo == "" {
			writeError(w, http.StatusBadRequest, "teamName, memberOne, and memberTwo are required")
			return
		}

		team, err := store.CreateTeam(r.Context(), req.TeamName, req.MemberOne, req.MemberTwo)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// A registered team appears on the leaderboard immediately,
		// before its first solve.
		entry := cipherquest.LeaderboardEntry{
			TeamID:    team.ID,
			TeamName:  team.Name,
			MemberOne: team.MemberOne,
			MemberTwo: team.MemberTwo,
		}
		if err := store.UpsertLeaderboard(r.Context(), entry); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, RegisterResponse{
			Token:     team.SessionToken,
			TeamID:    team.ID,
			TeamName:  team.Name,
			MemberOne: team.MemberOne,
			MemberTwo: team.MemberTwo,
			CreatedAt: team.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
}
