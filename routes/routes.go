package routes

import (
	"github.com/crosstable/pairing-system/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	pairingHandler *handlers.PairingHandler,
	roundHandler *handlers.RoundHandler,
	resultHandler *handlers.ResultHandler,
	standingsHandler *handlers.StandingsHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/", tournamentHandler.GetTournamentHandler)
		r.Get("/sections", tournamentHandler.ListSectionsHandler)
		r.Get("/standings", standingsHandler.StandingsHandler)
		r.Get("/team-standings", standingsHandler.TeamStandingsHandler)

		r.Post("/quads", pairingHandler.GenerateQuadsHandler)

		r.Get("/sections/{sectionID}/rounds", roundHandler.ListRoundStatesHandler)

		r.Route("/rounds/{round}", func(r chi.Router) {
			r.Get("/pairings", pairingHandler.ListPairingsHandler)
			r.Get("/team-pairings", pairingHandler.TeamPairingsHandler)
			r.Post("/reset", pairingHandler.ResetHandler)
			r.Post("/sections/{sectionID}/pairings", pairingHandler.GenerateHandler)
			r.Post("/sections/{sectionID}/complete", roundHandler.CompleteRoundHandler)
		})
	})

	router.Patch("/matches/{matchID}/result", resultHandler.SubmitResultHandler)
}
