package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
)

var errNoSession = errors.New("no valid session")

// teamFromRequest resolves the acting team from the Bearer session token
// handed out at registration.
func teamFromRequest(r *http.Request, store Store) (cipherquest.Team, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return cipherquest.Team{}, errNoSession
	}
	team, err := store.TeamFromToken(r.Context(), token)
	if errors.Is(err, ErrNotFound) {
		return cipherquest.Team{}, errNoSession
	}
	return team, err
}
