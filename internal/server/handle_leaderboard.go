package server

import (
	"net/http"
	"time"
)

// LeaderboardItem is one ranked row. Rank is 1-based display order.
type LeaderboardItem struct {
	Rank            int    `json:"rank"`
	TeamID          string `json:"teamId"`
	TeamName        string `json:"teamName"`
	MemberOne       string `json:"memberOne"`
	MemberTwo       string `json:"memberTwo"`
	LevelsCompleted int    `json:"levelsCompleted"`
	TotalPoints     int    `json:"totalPoints"`
	TotalTimeMS     int64  `json:"totalTimeMs"`
	UpdatedAt       string `json:"updatedAt"`
}

type LeaderboardResponse struct {
	Teams []LeaderboardItem `json:"teams"`
}

// handleLeaderboard returns the full ranked standings: levels completed
// descending, then total solving time ascending, ties keeping
// registration order. Clients poll this for display refresh.
func handleLeaderboard(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.RankedLeaderboard(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := LeaderboardResponse{Teams: []LeaderboardItem{}}
		for i, e := range entries {
			resp.Teams = append(resp.Teams, LeaderboardItem{
				Rank:            i + 1,
				TeamID:          e.TeamID,
				TeamName:        e.TeamName,
				MemberOne:       e.MemberOne,
				MemberTwo:       e.MemberTwo,
				LevelsCompleted: e.LevelsCompleted,
				TotalPoints:     e.TotalPoints,
				TotalTimeMS:     e.TotalTime.Milliseconds(),
				UpdatedAt:       e.UpdatedAt.UTC().Format(time.RFC3339Nano),
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
