// Package api wires the HTTP surface: the skill webhook plus health and
// version endpoints.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/pawtrack/catflap/internal/alexa"
	"github.com/pawtrack/catflap/internal/api/middleware"
	"github.com/pawtrack/catflap/internal/config"
	"github.com/pawtrack/catflap/internal/skill"
)

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *config.Config, sk *skill.Skill) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Signature", "SignatureCertChainUrl"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// The voice platform posts every interaction here. Request signature
	// verification happens in the fronting layer, not in this process.
	r.Post("/catflap", webhookHandler(sk))

	return r
}

func webhookHandler(sk *skill.Skill) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env alexa.Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			log.Warn().Err(err).Msg("bad request envelope")
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		respondJSON(w, http.StatusOK, sk.HandleRequest(r.Context(), env))
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "catflap-skill",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"version": cfg.Version,
			"service": "catflap-skill",
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
