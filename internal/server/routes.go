package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/quest"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, engine *quest.Engine, db *sql.DB, spaDir string) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Ancient Scripts API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	r.Route("/api", func(r chi.Router) {
		r.Post("/teams", handleRegister(store))
		r.Get("/leaderboard", handleLeaderboard(store))

		// Quest routes — team resolved from the Bearer session token.
		r.Route("/quest", func(r chi.Router) {
			r.Get("/state", handleQuestState(store, engine, broker))
			r.Post("/start", handleQuestStart(store, engine, broker))
			r.Post("/reset", handleQuestReset(store, engine))
			r.Post("/answer", handleAnswer(store, engine, broker))
			r.Post("/expire", handleQuestExpire(store, engine, broker))
			r.Get("/events", handleEvents(store, broker))
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
