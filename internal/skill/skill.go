// Package skill is the voice-skill core: it takes a parsed request envelope,
// builds a fresh telemetry snapshot, dispatches the matched intent and
// renders the spoken reply. All state is request-scoped; nothing survives
// between interactions.
package skill

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pawtrack/catflap/internal/alexa"
	"github.com/pawtrack/catflap/internal/cats"
	"github.com/pawtrack/catflap/internal/commands"
	"github.com/pawtrack/catflap/internal/config"
	"github.com/pawtrack/catflap/internal/speech"
	"github.com/pawtrack/catflap/internal/surehub"
)

// Telemetry is the read-only slice of the SureHub client the skill needs.
type Telemetry interface {
	Pets(ctx context.Context) ([]surehub.Pet, error)
	Devices(ctx context.Context) ([]surehub.Device, error)
}

// Snapshot is the telemetry for one interaction, fetched fresh at the start
// and discarded at the end.
type Snapshot struct {
	Cats    []cats.LocatedCat
	Devices []surehub.Device
}

// Result is a handler's spoken outcome.
type Result struct {
	Speech     string
	EndSession bool
}

// HandlerFunc handles one intent against the current snapshot.
type HandlerFunc func(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error)

// Skill dispatches voice interactions.
type Skill struct {
	cfg        *config.Config
	hh         *config.Household
	telemetry  Telemetry
	dispatcher *commands.Dispatcher
	handlers   map[string]HandlerFunc
}

// New creates the skill and registers its intent handlers.
func New(cfg *config.Config, hh *config.Household, tel Telemetry, disp *commands.Dispatcher) *Skill {
	s := &Skill{
		cfg:        cfg,
		hh:         hh,
		telemetry:  tel,
		dispatcher: disp,
		handlers:   make(map[string]HandlerFunc),
	}

	s.register("GetLocationOfCatIntent", s.getLocationOfCat)
	s.register("GetCatInLocationDurationIntent", s.getCatDuration)
	s.register("GetLongestDurationIntent", s.getLongestDuration)
	s.register("GetShortestDurationIntent", s.getShortestDuration)
	s.register("GetCatsInLocationIntent", s.getCatsInLocation)
	s.register("GetEveryoneIntent", s.getEveryone)
	s.register("GetAgeOfCatIntent", s.getAgeOfCat)
	s.register("GetDeviceStatusIntent", s.getDeviceStatus)
	s.register("GetLockStatusIntent", s.getLockStatus)
	s.register("GetCatPermissionIntent", s.getCatPermission)
	s.register("SetLocationOfCatIntent", s.setLocationOfCat)
	s.register("SetCatPermissionIntent", s.setCatPermission)
	s.register("SetGroupPermissionIntent", s.setGroupPermission)
	s.register("SetAllCatsPermissionIntent", s.setAllCatsPermission)
	s.register("SetLockStateIntent", s.setLockState)

	return s
}

func (s *Skill) register(name string, h HandlerFunc) {
	s.handlers[name] = h
}

// HandleRequest processes one interaction. Remote failures never escape as
// platform errors: anything that goes wrong ends the session with the stock
// apology.
func (s *Skill) HandleRequest(ctx context.Context, env alexa.Envelope) alexa.ResponseEnvelope {
	interactionID := uuid.New().String()
	logger := log.With().
		Str("interaction_id", interactionID).
		Str("type", env.Request.Type).
		Logger()

	switch env.Request.Type {
	case alexa.TypeLaunch:
		logger.Info().Msg("launch")
		return alexa.NewResponse("I know where the cats are!", false)

	case alexa.TypeSessionEnded:
		return alexa.EmptyResponse()

	case alexa.TypeIntent:
		intent := env.Request.Intent
		logger.Info().Str("intent", intent.Name).Msg("intent")

		handler, ok := s.handlers[intent.Name]
		if !ok {
			logger.Warn().Str("intent", intent.Name).Msg("unknown intent")
			return alexa.NewResponse("Sorry, I can't help with that.", true)
		}

		snap, err := s.snapshot(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("telemetry fetch failed")
			return alexa.NewResponse(speech.Badness, true)
		}

		result, err := handler(ctx, snap, intent)
		if err != nil {
			logger.Error().Err(err).Str("intent", intent.Name).Msg("intent failed")
			return alexa.NewResponse(speech.Badness, true)
		}

		logger.Info().Str("speech", result.Speech).Msg("reply")
		return alexa.NewResponse(result.Speech, result.EndSession)
	}

	logger.Warn().Msg("unknown request type")
	return alexa.NewResponse(speech.Badness, true)
}

// snapshot fetches pet and device telemetry concurrently and normalizes the
// located-cat set.
func (s *Skill) snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		pets    []surehub.Pet
		devices []surehub.Device
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pets, err = s.telemetry.Pets(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		devices, err = s.telemetry.Devices(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Snapshot{
		Cats:    cats.Normalize(pets, s.hh),
		Devices: devices,
	}, nil
}
