// Package slots interprets the entity-resolution payload of a voice request:
// which cat was named, and which location labels were meant.
package slots

import (
	"github.com/pawtrack/catflap/internal/alexa"
	"github.com/pawtrack/catflap/internal/config"
)

// Kind tags a resolved slot value.
type Kind int

const (
	// Unresolved means the slot was absent or the platform could not match
	// the spoken value against its vocabulary. Unresolved values are never
	// guessed at.
	Unresolved Kind = iota
	// Exact means the platform canonicalized the spoken value.
	Exact
	// Literal means the raw spoken text was carried through as-is.
	Literal
)

// Value is a tagged slot resolution result.
type Value struct {
	Kind Kind
	Text string
}

// Resolved reports whether the value is usable.
func (v Value) Resolved() bool { return v.Kind != Unresolved }

// CatName resolves the catname slot. Only an exact vocabulary match yields a
// usable name; free-text cat names are rejected rather than guessed.
func CatName(s map[string]alexa.Slot) Value {
	return exactOnly(s, "catname")
}

// GroupName resolves the groupname slot with the same semantics as CatName.
func GroupName(s map[string]alexa.Slot) Value {
	return exactOnly(s, "groupname")
}

func exactOnly(s map[string]alexa.Slot, name string) Value {
	slot, ok := s[name]
	if !ok || len(slot.Resolutions) == 0 {
		return Value{Kind: Unresolved}
	}
	res := slot.Resolutions[0]
	if res.Status == alexa.ResolutionMatch && len(res.Values) > 0 {
		return Value{Kind: Exact, Text: res.Values[0].Name}
	}
	return Value{Kind: Unresolved}
}

// Locations resolves the location labels a request refers to. A named
// location wins: canonical on an exact match, otherwise the raw spoken text
// (room names outside the platform vocabulary are tolerated). With no named
// location, the in/out direction slot decides: "out" is the single label
// "outside", while "in" is ambiguous across every physical inside location
// and expands to all of the flaps' inside labels in configuration order.
func Locations(s map[string]alexa.Slot, hh *config.Household) []string {
	if slot, ok := s["locationname"]; ok && len(slot.Resolutions) > 0 {
		res := slot.Resolutions[0]
		if res.Status == alexa.ResolutionMatch && len(res.Values) > 0 {
			return []string{res.Values[0].Name}
		}
		return []string{slot.Value}
	}

	slot, ok := s["inout"]
	if !ok || len(slot.Resolutions) == 0 {
		return nil
	}
	res := slot.Resolutions[0]
	if res.Status != alexa.ResolutionMatch || len(res.Values) == 0 {
		return nil
	}

	if res.Values[0].Name == "out" {
		return []string{"outside"}
	}
	labels := make([]string, 0, len(hh.Flaps))
	for _, flap := range hh.Flaps {
		labels = append(labels, flap.In)
	}
	return labels
}
