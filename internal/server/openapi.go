package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Ancient Scripts API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Ancient Scripts team cipher-solving game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/teams
	postTeams, _ := r.NewOperationContext(http.MethodPost, "/api/teams")
	postTeams.SetSummary("Register a team")
	postTeams.SetDescription("Registers a two-member team. Returns the team identity and a session token.")
	postTeams.AddReqStructure(RegisterRequest{})
	postTeams.AddRespStructure(RegisterResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postTeams.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postTeams)

	// GET /api/quest/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/quest/state")
	getState.SetSummary("Get quest state")
	getState.SetDescription("Returns the team's quest progress, current puzzle, and remaining time. Requires Bearer token.")
	getState.AddRespStructure(QuestStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getState)

	// POST /api/quest/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/quest/start")
	postStart.SetSummary("Start quest")
	postStart.SetDescription("Starts the quest at level 1 with a fresh 30-minute clock. Restarting discards prior progress. Requires Bearer token.")
	postStart.AddRespStructure(QuestStartResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postStart)

	// POST /api/quest/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/quest/reset")
	postReset.SetSummary("Reset quest")
	postReset.SetDescription("Clears the team's progress unconditionally. Requires Bearer token.")
	postReset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postReset)

	// POST /api/quest/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/quest/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Submits an answer for the current puzzle. Matching is trim + case-insensitive equality. Requires Bearer token.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/quest/expire
	postExpire, _ := r.NewOperationContext(http.MethodPost, "/api/quest/expire")
	postExpire.SetSummary("Expire quest")
	postExpire.SetDescription("Marks the quest ended when the countdown reaches zero. Totals are preserved. Requires Bearer token.")
	postExpire.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postExpire.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postExpire)

	// GET /api/quest/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/quest/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of the team's quest events. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/leaderboard
	getLeaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getLeaderboard.SetSummary("Ranked leaderboard")
	getLeaderboard.SetDescription("Returns all teams ranked by levels completed, then total solving time.")
	getLeaderboard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getLeaderboard)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
