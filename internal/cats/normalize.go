// Package cats turns raw SureHub telemetry into a uniform located-cat model
// and answers the read-only questions the skill gets asked: who is where,
// who has been there longest, battery, lock and permission status.
package cats

import (
	"time"

	"github.com/pawtrack/catflap/internal/config"
	"github.com/pawtrack/catflap/internal/surehub"
	"github.com/rs/zerolog/log"
)

// LocatedCat is the derived record for one living pet: its current spoken
// location and how long it has held it. The set is rebuilt from telemetry on
// every interaction and never cached across requests.
type LocatedCat struct {
	Name     string
	Location string
	Since    time.Time
	ID       int64
	TagID    int64
}

// Normalize converts raw pet telemetry into located cats. Pets without a
// position record are skipped (no flap history yet), an absent device id
// resolves against the household's fallback flap (id 0), and deceased cats
// are excluded. Output order is input order.
func Normalize(pets []surehub.Pet, hh *config.Household) []LocatedCat {
	located := make([]LocatedCat, 0, len(pets))

	for _, pet := range pets {
		if pet.Position == nil {
			log.Debug().Str("pet", pet.Name).Msg("no position telemetry, skipping")
			continue
		}

		if record, ok := hh.CatByName(pet.Name); ok && record.DOD != nil {
			continue
		}

		flap, ok := hh.FlapByID(pet.Position.DeviceID)
		if !ok {
			// Unknown device: resolve against the mandatory fallback flap.
			flap, _ = hh.FlapByID(0)
			log.Warn().
				Str("pet", pet.Name).
				Int64("device_id", pet.Position.DeviceID).
				Msg("unknown flap, using fallback")
		}

		location := flap.Out
		if pet.Position.Where == surehub.WhereInside {
			location = flap.In
		}

		cat := LocatedCat{
			Name:     pet.Name,
			Location: location,
			Since:    pet.Position.Since,
			ID:       pet.ID,
		}
		if pet.Tag != nil {
			cat.TagID = pet.Tag.ID
		}
		located = append(located, cat)
	}

	return located
}
