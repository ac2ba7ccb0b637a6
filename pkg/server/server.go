// Package server assembles the catflap skill server from its parts:
// configuration, telemetry, the SureHub client, the command dispatcher, the
// skill core and the HTTP router. It lives in pkg/ so an embedding process
// can compose the handler behind its own verification layer.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawtrack/catflap/internal/api"
	"github.com/pawtrack/catflap/internal/commands"
	"github.com/pawtrack/catflap/internal/config"
	"github.com/pawtrack/catflap/internal/skill"
	"github.com/pawtrack/catflap/internal/surehub"
	"github.com/pawtrack/catflap/internal/telemetry"
)

// Server holds the initialized skill server.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Config is the loaded configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc flushes telemetry on graceful shutdown.
	ShutdownFunc func(context.Context) error
}

// New loads configuration from the environment and initializes all
// components.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the server with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hh, err := config.LoadHousehold(cfg.HouseholdPath)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("flaps", len(hh.Flaps)).
		Int("cats", len(hh.Cats)).
		Msg("household config loaded")

	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	client := surehub.NewClient(
		cfg.SureHub.BaseURL,
		cfg.SureHub.Token,
		cfg.SureHub.HouseholdID,
		surehub.WithTimeout(time.Duration(cfg.SureHub.TimeoutSecs)*time.Second),
	)
	dispatcher := commands.NewDispatcher(client, hh)
	sk := skill.New(cfg, hh, client, dispatcher)

	return &Server{
		Handler:      api.NewRouter(cfg, sk),
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
