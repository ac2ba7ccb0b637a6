package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Flap describes one physical pet-door device. In and Out are the spoken
// labels for the two sides of the door. Every deployment must also configure
// a flap with ID 0: pets with no flap history report device 0 and resolve
// against it.
type Flap struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	In     string `yaml:"in"`
	Out    string `yaml:"out"`
	Curfew bool   `yaml:"curfew"`
}

// CatRecord holds a cat's dates. A cat with DOD set is deceased and is
// excluded from location tracking.
type CatRecord struct {
	Name string     `yaml:"name"`
	DOB  time.Time  `yaml:"dob"`
	DOD  *time.Time `yaml:"dod,omitempty"`
}

// Group is a named subset of cats that can be commanded together
// ("keep the kittens in").
type Group struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// Household is the static description of a deployment: its flaps, its cats
// and which location labels count as indoors.
type Household struct {
	Flaps  []Flap      `yaml:"flaps"`
	Cats   []CatRecord `yaml:"cats"`
	Groups []Group     `yaml:"groups,omitempty"`

	// InsideLocations lists the room labels that sit on the inside of the
	// house, in addition to the canonical "inside". Used for phrasing
	// ("in the house") and for mapping a label to an in/out direction.
	InsideLocations []string `yaml:"inside_locations"`
}

// LoadHousehold reads and validates a household YAML file.
func LoadHousehold(path string) (*Household, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read household config: %w", err)
	}
	var h Household
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("parse household config: %w", err)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return &h, nil
}

// Validate checks the structural invariants the rest of the system relies on.
func (h *Household) Validate() error {
	if len(h.Flaps) == 0 {
		return fmt.Errorf("household config: at least one flap is required")
	}
	if _, ok := h.FlapByID(0); !ok {
		return fmt.Errorf("household config: a fallback flap with id 0 is required")
	}
	seen := make(map[string]bool, len(h.Cats))
	for _, c := range h.Cats {
		if c.Name == "" {
			return fmt.Errorf("household config: cat with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("household config: duplicate cat %q", c.Name)
		}
		seen[c.Name] = true
	}
	for _, g := range h.Groups {
		for _, m := range g.Members {
			if !seen[m] {
				return fmt.Errorf("household config: group %q names unknown cat %q", g.Name, m)
			}
		}
	}
	return nil
}

// FlapByID returns the flap with the given device id.
func (h *Household) FlapByID(id int64) (Flap, bool) {
	for _, f := range h.Flaps {
		if f.ID == id {
			return f, true
		}
	}
	return Flap{}, false
}

// CurfewFlaps returns the flaps that participate in permission control,
// in configuration order.
func (h *Household) CurfewFlaps() []Flap {
	var out []Flap
	for _, f := range h.Flaps {
		if f.Curfew {
			out = append(out, f)
		}
	}
	return out
}

// CatByName returns the birth/death record for a cat.
func (h *Household) CatByName(name string) (CatRecord, bool) {
	for _, c := range h.Cats {
		if c.Name == name {
			return c, true
		}
	}
	return CatRecord{}, false
}

// GroupByName returns the named group.
func (h *Household) GroupByName(name string) (Group, bool) {
	for _, g := range h.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// IsInside reports whether a location label refers to somewhere indoors.
// "inside" always does; named rooms qualify via InsideLocations.
func (h *Household) IsInside(label string) bool {
	if label == "inside" {
		return true
	}
	for _, l := range h.InsideLocations {
		if l == label {
			return true
		}
	}
	return false
}
