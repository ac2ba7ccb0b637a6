package cats

import (
	"sort"
	"strings"

	"github.com/pawtrack/catflap/internal/config"
	"github.com/pawtrack/catflap/internal/surehub"
)

// BatteryThreshold is the voltage below which a flap battery counts as low.
const BatteryThreshold = 5.2

// FindByName returns the located cat with the exact given name.
func FindByName(set []LocatedCat, name string) (LocatedCat, bool) {
	for _, c := range set {
		if c.Name == name {
			return c, true
		}
	}
	return LocatedCat{}, false
}

// AtLocations filters the set to cats whose location is one of the given
// labels, preserving order.
func AtLocations(set []LocatedCat, locations []string) []LocatedCat {
	var out []LocatedCat
	for _, c := range set {
		for _, l := range locations {
			if c.Location == l {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// LongestAt returns the cat that has been at one of the given locations
// longest: the earliest Since means the most elapsed time. Ties keep the
// original telemetry order.
func LongestAt(set []LocatedCat, locations []string) (LocatedCat, bool) {
	sorted := sortedBySince(set, true)
	return first(AtLocations(sorted, locations))
}

// ShortestAt is the counterpart of LongestAt: latest Since first.
func ShortestAt(set []LocatedCat, locations []string) (LocatedCat, bool) {
	sorted := sortedBySince(set, false)
	return first(AtLocations(sorted, locations))
}

// SortedByName returns a copy sorted case-insensitively by name, so spoken
// listings come out in a deterministic order.
func SortedByName(set []LocatedCat) []LocatedCat {
	out := make([]LocatedCat, len(set))
	copy(out, set)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToUpper(out[i].Name) < strings.ToUpper(out[j].Name)
	})
	return out
}

func sortedBySince(set []LocatedCat, ascending bool) []LocatedCat {
	out := make([]LocatedCat, len(set))
	copy(out, set)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Since.Before(out[j].Since)
		}
		return out[j].Since.Before(out[i].Since)
	})
	return out
}

func first(set []LocatedCat) (LocatedCat, bool) {
	if len(set) == 0 {
		return LocatedCat{}, false
	}
	return set[0], true
}

// LowBatteries partitions devices by the battery threshold.
func LowBatteries(devices []surehub.Device) (low, okay []surehub.Device) {
	for _, d := range devices {
		if d.Status.Battery < BatteryThreshold {
			low = append(low, d)
		} else {
			okay = append(okay, d)
		}
	}
	return low, okay
}

// AllBatteriesOK applies the configured all-okay policy to a partition from
// LowBatteries.
func AllBatteriesOK(low, okay []surehub.Device, policy config.BatteryConfig) bool {
	switch policy.Policy {
	case config.BatteryPolicyDeviceCount:
		return len(low) == 0 && len(okay) == policy.DeviceCount
	default:
		return len(low) == 0
	}
}

// LockState maps a device locking code to its spoken phrase.
func LockState(locking int) string {
	switch locking {
	case surehub.LockingUnlocked:
		return "unlocked"
	case surehub.LockingIn:
		return "locked in"
	case surehub.LockingOut:
		return "locked out"
	case surehub.LockingBoth:
		return "locked both ways"
	}
	return "in an unknown state"
}

// PermissionSummary partitions cats by their curfew permission.
type PermissionSummary struct {
	KeptIn     []string
	AllowedOut []string
}

// Permissions inspects the per-tag profiles on every curfew flap and buckets
// the cats into kept-in versus allowed-out. The first profile seen for a
// cat's tag wins; flaps are visited in configuration order.
func Permissions(devices []surehub.Device, hh *config.Household, set []LocatedCat) PermissionSummary {
	byTag := make(map[int64]string, len(set))
	for _, c := range set {
		if c.TagID != 0 {
			byTag[c.TagID] = c.Name
		}
	}

	var summary PermissionSummary
	seen := make(map[string]bool)

	for _, flap := range hh.CurfewFlaps() {
		device, ok := deviceByID(devices, flap.ID)
		if !ok {
			continue
		}
		for _, tag := range device.Tags {
			name, ok := byTag[tag.ID]
			if !ok || seen[name] {
				continue
			}
			switch tag.Profile {
			case surehub.ProfileKeptIn:
				summary.KeptIn = append(summary.KeptIn, name)
				seen[name] = true
			case surehub.ProfileAllowedOut:
				summary.AllowedOut = append(summary.AllowedOut, name)
				seen[name] = true
			}
		}
	}
	return summary
}

func deviceByID(devices []surehub.Device, id int64) (surehub.Device, bool) {
	for _, d := range devices {
		if d.ID == id {
			return d, true
		}
	}
	return surehub.Device{}, false
}
