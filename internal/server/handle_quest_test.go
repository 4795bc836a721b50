package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/database"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/migrations"
	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/quest"
)

func setupRouter(t *testing.T) (*chi.Mux, *SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	store := NewSQLiteStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	addRoutes(r, logger, store, quest.NewEngine(), db, "")
	return r, store
}

func registerTeam(t *testing.T, r *chi.Mux, name, one, two string) RegisterResponse {
	t.Helper()

	body, _ := json.Marshal(RegisterRequest{TeamName: name, MemberOne: one, MemberTwo: two})
	req := httptest.NewRequest(http.MethodPost, "/api/teams", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp RegisterResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Token == "" {
		t.Fatal("register: expected a session token")
	}
	return resp
}

func doJSON(t *testing.T, r *chi.Mux, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		json.NewDecoder(w.Body).Decode(out)
	}
	return w
}

func TestRegisterValidation(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"blank team name", RegisterRequest{TeamName: "  ", MemberOne: "Ada", MemberTwo: "Grace"}},
		{"blank first member", RegisterRequest{TeamName: "Breakers", MemberOne: "", MemberTwo: "Grace"}},
		{"blank second member", RegisterRequest{TeamName: "Breakers", MemberOne: "Ada", MemberTwo: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/api/teams", bytes.NewReader(body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestRegisterDuplicateNamesAllowed(t *testing.T) {
	r, _ := setupRouter(t)

	a := registerTeam(t, r, "The Code Breakers", "Ada", "Grace")
	b := registerTeam(t, r, "The Code Breakers", "Alan", "Joan")

	if a.TeamID == b.TeamID {
		t.Error("expected distinct team ids for duplicate names")
	}
}

func TestUnauthorizedAccess(t *testing.T) {
	r, _ := setupRouter(t)

	for _, path := range []string{"/api/quest/state", "/api/quest/start", "/api/quest/answer"} {
		method := http.MethodPost
		if path == "/api/quest/state" {
			method = http.MethodGet
		}

		req := httptest.NewRequest(method, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: expected 401, got %d", path, w.Code)
		}

		req = httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer bogus")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad token: expected 401, got %d", path, w.Code)
		}
	}
}

func TestQuestFlow(t *testing.T) {
	r, _ := setupRouter(t)
	team := registerTeam(t, r, "Scribes", "Maria", "Carlos")

	// Before starting, the quest reads as not started.
	var state QuestStateResponse
	w := doJSON(t, r, http.MethodGet, "/api/quest/state", team.Token, nil, &state)
	if w.Code != http.StatusOK {
		t.Fatalf("state: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if state.Status != "not_started" {
		t.Errorf("status = %q, want not_started", state.Status)
	}

	// Answering before starting is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "hello world"}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("answer before start: expected 409, got %d", w.Code)
	}

	// Start.
	var started QuestStartResponse
	w = doJSON(t, r, http.MethodPost, "/api/quest/start", team.Token, nil, &started)
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if started.CurrentPuzzle == nil || started.CurrentPuzzle.Level != 1 {
		t.Fatalf("start: expected level 1 puzzle, got %+v", started.CurrentPuzzle)
	}
	if started.CurrentPuzzle.Hint != "" {
		t.Error("start: hint must not be visible before misses")
	}
	if started.RemainingSeconds <= 0 || started.RemainingSeconds > 1800 {
		t.Errorf("start: remainingSeconds = %d, want (0, 1800]", started.RemainingSeconds)
	}

	// Empty answer: rejected, no attempt counted.
	w = doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "   "}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank answer: expected 400, got %d", w.Code)
	}

	// Two misses reveal the hint.
	var ans AnswerResponse
	doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "wrong"}, &ans)
	if ans.IsCorrect || ans.Attempts != 1 || ans.Hint != "" {
		t.Errorf("first miss: got %+v", ans)
	}
	doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "wrong"}, &ans)
	if ans.IsCorrect || ans.Attempts != 2 {
		t.Errorf("second miss: got %+v", ans)
	}
	if ans.Hint == "" {
		t.Error("second miss: expected the hint to be revealed")
	}

	// State now carries the revealed hint.
	doJSON(t, r, http.MethodGet, "/api/quest/state", team.Token, nil, &state)
	if state.CurrentPuzzle == nil || state.CurrentPuzzle.Hint == "" {
		t.Error("state: expected revealed hint on current puzzle")
	}
	if state.CurrentPuzzle.Attempts != 2 {
		t.Errorf("state: attempts = %d, want 2", state.CurrentPuzzle.Attempts)
	}

	// Correct answer, case/whitespace-insensitive.
	doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "  Hello World  "}, &ans)
	if !ans.IsCorrect {
		t.Fatalf("correct answer rejected: %+v", ans)
	}
	if ans.PointsAwarded != 100 || ans.TotalPoints != 100 {
		t.Errorf("points = %d/%d, want 100/100", ans.PointsAwarded, ans.TotalPoints)
	}
	if ans.NextPuzzle == nil || ans.NextPuzzle.Level != 2 {
		t.Fatalf("expected next puzzle level 2, got %+v", ans.NextPuzzle)
	}
	if ans.NextPuzzle.Hint != "" {
		t.Error("hint reveal must not carry over to the next level")
	}

	// Progress persisted: index advanced, one completed id.
	doJSON(t, r, http.MethodGet, "/api/quest/state", team.Token, nil, &state)
	if state.LevelsCompleted != 1 || len(state.CompletedIDs) != 1 || state.CompletedIDs[0] != "caesar_1" {
		t.Errorf("state after solve: %+v", state)
	}
	if state.CurrentPuzzle == nil || state.CurrentPuzzle.Level != 2 {
		t.Errorf("state after solve: expected level 2, got %+v", state.CurrentPuzzle)
	}

	// The solve is reflected on the leaderboard immediately.
	var lb LeaderboardResponse
	doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil, &lb)
	if len(lb.Teams) != 1 {
		t.Fatalf("leaderboard: expected 1 team, got %d", len(lb.Teams))
	}
	if lb.Teams[0].LevelsCompleted != 1 || lb.Teams[0].TotalPoints != 100 {
		t.Errorf("leaderboard entry: %+v", lb.Teams[0])
	}
}

func TestCompleteQuest(t *testing.T) {
	r, _ := setupRouter(t)
	team := registerTeam(t, r, "Finishers", "Ana", "Luis")

	doJSON(t, r, http.MethodPost, "/api/quest/start", team.Token, nil, nil)

	answers := []string{"hello world", "ancient", "sacred", "codes", "hidden messages", "run the caesar three"}
	var ans AnswerResponse
	for i, a := range answers {
		w := doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: a}, &ans)
		if w.Code != http.StatusOK {
			t.Fatalf("level %d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
		if !ans.IsCorrect {
			t.Fatalf("level %d: expected correct", i+1)
		}
	}

	if !ans.QuestComplete {
		t.Error("expected questComplete on the last level")
	}
	if ans.TotalPoints != 1500 {
		t.Errorf("totalPoints = %d, want 1500", ans.TotalPoints)
	}

	var state QuestStateResponse
	doJSON(t, r, http.MethodGet, "/api/quest/state", team.Token, nil, &state)
	if state.Status != "completed" {
		t.Errorf("status = %q, want completed", state.Status)
	}
	if state.CurrentPuzzle != nil {
		t.Error("completed quest should have no current puzzle")
	}

	// Further submissions conflict.
	w := doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "extra"}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 after completion, got %d", w.Code)
	}
}

func TestResetClearsProgress(t *testing.T) {
	r, _ := setupRouter(t)
	team := registerTeam(t, r, "Resetters", "Bo", "Cy")

	doJSON(t, r, http.MethodPost, "/api/quest/start", team.Token, nil, nil)
	doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "hello world"}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/quest/reset", team.Token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", w.Code)
	}

	var state QuestStateResponse
	doJSON(t, r, http.MethodGet, "/api/quest/state", team.Token, nil, &state)
	if state.Status != "not_started" {
		t.Errorf("status = %q, want not_started", state.Status)
	}
	if state.TotalPoints != 0 || state.LevelsCompleted != 0 {
		t.Errorf("reset left totals behind: %+v", state)
	}

	var lb LeaderboardResponse
	doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil, &lb)
	if lb.Teams[0].TotalPoints != 0 || lb.Teams[0].LevelsCompleted != 0 {
		t.Errorf("reset should zero the leaderboard entry: %+v", lb.Teams[0])
	}
}

func TestExpirePreservesTotals(t *testing.T) {
	r, _ := setupRouter(t)
	team := registerTeam(t, r, "Sleepers", "Di", "Ed")

	doJSON(t, r, http.MethodPost, "/api/quest/start", team.Token, nil, nil)
	doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "hello world"}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/quest/expire", team.Token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expire: expected 200, got %d", w.Code)
	}

	var state QuestStateResponse
	doJSON(t, r, http.MethodGet, "/api/quest/state", team.Token, nil, &state)
	if state.Status != "expired" {
		t.Errorf("status = %q, want expired", state.Status)
	}
	if state.TotalPoints != 100 || state.LevelsCompleted != 1 {
		t.Errorf("expiry must leave totals untouched: %+v", state)
	}

	// Answering after expiry conflicts.
	w = doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "ancient"}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 after expiry, got %d", w.Code)
	}

	// Expiring again is harmless.
	w = doJSON(t, r, http.MethodPost, "/api/quest/expire", team.Token, nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("second expire: expected 200, got %d", w.Code)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	a := registerTeam(t, r, "Team A", "A1", "A2")
	b := registerTeam(t, r, "Team B", "B1", "B2")
	c := registerTeam(t, r, "Team C", "C1", "C2")

	// A: 4 levels in 500ms, B: 4 levels in 300ms, C: 6 levels in 9s.
	upsert := func(id, name string, levels int, points int, total time.Duration) {
		err := store.UpsertLeaderboard(ctx, cipherquest.LeaderboardEntry{
			TeamID:          id,
			TeamName:        name,
			LevelsCompleted: levels,
			TotalPoints:     points,
			TotalTime:       total,
		})
		if err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}
	upsert(a.TeamID, "Team A", 4, 700, 500*time.Millisecond)
	upsert(b.TeamID, "Team B", 4, 700, 300*time.Millisecond)
	upsert(c.TeamID, "Team C", 6, 1500, 9*time.Second)

	var lb LeaderboardResponse
	doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil, &lb)

	if len(lb.Teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(lb.Teams))
	}
	wantOrder := []string{"Team C", "Team B", "Team A"}
	for i, want := range wantOrder {
		if lb.Teams[i].TeamName != want {
			t.Errorf("rank %d = %q, want %q", i+1, lb.Teams[i].TeamName, want)
		}
		if lb.Teams[i].Rank != i+1 {
			t.Errorf("rank field = %d, want %d", lb.Teams[i].Rank, i+1)
		}
	}
}

func TestLeaderboardStableOnTies(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	first := registerTeam(t, r, "First In", "F1", "F2")
	second := registerTeam(t, r, "Second In", "S1", "S2")

	// Identical keys: registration order decides.
	for _, tm := range []RegisterResponse{first, second} {
		err := store.UpsertLeaderboard(ctx, cipherquest.LeaderboardEntry{
			TeamID:          tm.TeamID,
			TeamName:        tm.TeamName,
			LevelsCompleted: 2,
			TotalPoints:     250,
			TotalTime:       time.Minute,
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	var lb LeaderboardResponse
	doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil, &lb)

	if lb.Teams[0].TeamName != "First In" || lb.Teams[1].TeamName != "Second In" {
		t.Errorf("tied entries reordered: %q, %q", lb.Teams[0].TeamName, lb.Teams[1].TeamName)
	}
}

func TestStartRestartsExistingQuest(t *testing.T) {
	r, _ := setupRouter(t)
	team := registerTeam(t, r, "Restarters", "Gi", "Hu")

	doJSON(t, r, http.MethodPost, "/api/quest/start", team.Token, nil, nil)
	doJSON(t, r, http.MethodPost, "/api/quest/answer", team.Token, AnswerRequest{Answer: "hello world"}, nil)

	// Starting again wipes the earlier progress.
	doJSON(t, r, http.MethodPost, "/api/quest/start", team.Token, nil, nil)

	var state QuestStateResponse
	doJSON(t, r, http.MethodGet, "/api/quest/state", team.Token, nil, &state)
	if state.LevelsCompleted != 0 || state.TotalPoints != 0 {
		t.Errorf("restart kept old progress: %+v", state)
	}
	if state.CurrentPuzzle == nil || state.CurrentPuzzle.Level != 1 {
		t.Errorf("restart should present level 1, got %+v", state.CurrentPuzzle)
	}
}
