// Package commands issues mutating calls against the pet-tracking API:
// location changes, curfew permissions and lock state. Multi-device commands
// fan out concurrently and are always joined before the caller responds.
package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pawtrack/catflap/internal/cats"
	"github.com/pawtrack/catflap/internal/config"
	"github.com/pawtrack/catflap/internal/surehub"
)

// API is the slice of the SureHub client the dispatcher needs.
type API interface {
	SetPosition(ctx context.Context, petID int64, where int, since time.Time) error
	SetTagProfile(ctx context.Context, deviceID, tagID int64, profile int) error
	SetLocking(ctx context.Context, deviceID int64, locking int) error
}

// Dispatcher issues commands for one household.
type Dispatcher struct {
	api API
	hh  *config.Household
	now func() time.Time
}

// NewDispatcher creates a command dispatcher.
func NewDispatcher(api API, hh *config.Household) *Dispatcher {
	return &Dispatcher{api: api, hh: hh, now: time.Now}
}

// SetLocation records that a cat is now at the given label. Inside-family
// labels map to the inside direction code, everything else to outside, with
// a fresh timestamp.
func (d *Dispatcher) SetLocation(ctx context.Context, cat cats.LocatedCat, label string) error {
	where := surehub.WhereOutside
	if d.hh.IsInside(label) {
		where = surehub.WhereInside
	}
	return d.api.SetPosition(ctx, cat.ID, where, d.now())
}

// SetPermission sets a single cat's curfew permission on every curfew flap.
// Each device is updated independently: one failing flap never stops the
// others, and failures are logged rather than spoken.
func (d *Dispatcher) SetPermission(ctx context.Context, cat cats.LocatedCat, label string) {
	profile := surehub.ProfileAllowedOut
	if d.hh.IsInside(label) {
		profile = surehub.ProfileKeptIn
	}
	d.fanOutProfiles(ctx, []cats.LocatedCat{cat}, profile)
}

// SetGroupPermission applies SetPermission to every member of a group.
func (d *Dispatcher) SetGroupPermission(ctx context.Context, members []cats.LocatedCat, label string) {
	profile := surehub.ProfileAllowedOut
	if d.hh.IsInside(label) {
		profile = surehub.ProfileKeptIn
	}
	d.fanOutProfiles(ctx, members, profile)
}

// SetAllLocks sets the lock state on every physical flap (positive device
// id), independently per device.
func (d *Dispatcher) SetAllLocks(ctx context.Context, locking int) {
	commandID := uuid.New().String()
	var g errgroup.Group

	for _, flap := range d.hh.Flaps {
		if flap.ID <= 0 {
			continue
		}
		flap := flap
		g.Go(func() error {
			if err := d.api.SetLocking(ctx, flap.ID, locking); err != nil {
				log.Error().Err(err).
					Str("command_id", commandID).
					Str("flap", flap.Name).
					Int("locking", locking).
					Msg("lock update failed")
			}
			return nil
		})
	}
	g.Wait()
}

// fanOutProfiles issues one tag-profile update per cat per curfew flap,
// gathered before returning. Partial failure is logged per device; the
// spoken confirmation stays optimistic.
func (d *Dispatcher) fanOutProfiles(ctx context.Context, members []cats.LocatedCat, profile int) {
	commandID := uuid.New().String()
	var g errgroup.Group

	for _, cat := range members {
		if cat.TagID == 0 {
			log.Warn().Str("cat", cat.Name).Msg("no tag id, skipping permission update")
			continue
		}
		cat := cat
		for _, flap := range d.hh.CurfewFlaps() {
			flap := flap
			g.Go(func() error {
				if err := d.api.SetTagProfile(ctx, flap.ID, cat.TagID, profile); err != nil {
					log.Error().Err(err).
						Str("command_id", commandID).
						Str("cat", cat.Name).
						Str("flap", flap.Name).
						Int("profile", profile).
						Msg("permission update failed")
				}
				return nil
			})
		}
	}
	g.Wait()
}
