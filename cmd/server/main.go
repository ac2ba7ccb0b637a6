// Catflap skill server — the webhook backend behind the "where are the
// cats" voice skill. It answers location, age, battery, lock and curfew
// questions from SureHub flap telemetry and issues position, permission and
// lock commands back to the cloud API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/pawtrack/catflap/pkg/server"
)

func main() {
	envFile := pflag.String("env", "", "optional .env file to load")
	port := pflag.Int("port", 0, "listen port (overrides CATFLAP_PORT)")
	pflag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatal().Err(err).Str("file", *envFile).Msg("Failed to load env file")
		}
	} else {
		godotenv.Load()
	}

	log.Info().Msg("Catflap skill server starting...")

	ctx := context.Background()
	srv, err := server.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}
	defer srv.ShutdownFunc(ctx)

	if *port > 0 {
		srv.Port = *port
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", srv.Port),
		Handler:      srv.Handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", srv.Port).Msg("I know where the cats are!")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
