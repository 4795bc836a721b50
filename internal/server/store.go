package server

import (
	"context"
	"errors"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence surface the handlers work against: team
// identities, per-team progress, and derived leaderboard entries.
// Progress reads degrade to the zero value when no record exists or a
// stored record cannot be decoded — absent state is never an error.
type Store interface {
	CreateTeam(ctx context.Context, name, memberOne, memberTwo string) (cipherquest.Team, error)
	TeamFromToken(ctx context.Context, token string) (cipherquest.Team, error)

	LoadProgress(ctx context.Context, teamID string) (cipherquest.Progress, error)
	SaveProgress(ctx context.Context, teamID string, p cipherquest.Progress) error
	DeleteProgress(ctx context.Context, teamID string) error

	// ExpireQuest deactivates the team's quest in place. The returned
	// bool is true only for the call that actually flipped the flag, so
	// expiry side effects fire exactly once.
	ExpireQuest(ctx context.Context, teamID string) (bool, error)

	UpsertLeaderboard(ctx context.Context, e cipherquest.LeaderboardEntry) error
	RankedLeaderboard(ctx context.Context) ([]cipherquest.LeaderboardEntry, error)
}
