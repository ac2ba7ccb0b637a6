package skill

import (
	"context"
	"strings"
	"time"

	"github.com/pawtrack/catflap/internal/alexa"
	"github.com/pawtrack/catflap/internal/cats"
	"github.com/pawtrack/catflap/internal/slots"
	"github.com/pawtrack/catflap/internal/speech"
	"github.com/pawtrack/catflap/internal/surehub"
)

func say(text string) (Result, error) {
	return Result{Speech: text, EndSession: true}, nil
}

// ── Read-only intents ────────────────────────────────────────

func (s *Skill) getLocationOfCat(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	return s.locateCat(snap, intent, true)
}

func (s *Skill) getCatDuration(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	return s.locateCat(snap, intent, false)
}

func (s *Skill) locateCat(snap *Snapshot, intent alexa.Intent, purr bool) (Result, error) {
	name := slots.CatName(intent.Slots)
	if !name.Resolved() {
		return say(speech.UnknownCat)
	}
	cat, ok := cats.FindByName(snap.Cats, name.Text)
	if !ok {
		return say(speech.UnknownCat)
	}
	return say(speech.ForCat(cat, time.Now(), purr))
}

func (s *Skill) getLongestDuration(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	return s.durationExtreme(snap, intent, cats.LongestAt)
}

func (s *Skill) getShortestDuration(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	return s.durationExtreme(snap, intent, cats.ShortestAt)
}

func (s *Skill) durationExtreme(snap *Snapshot, intent alexa.Intent, pick func([]cats.LocatedCat, []string) (cats.LocatedCat, bool)) (Result, error) {
	locations := slots.Locations(intent.Slots, s.hh)
	if len(locations) == 0 {
		return say(speech.UnknownPlace)
	}
	cat, ok := pick(snap.Cats, locations)
	if !ok {
		return say(speech.AtLocation(nil, locations[0], s.hh.IsInside))
	}
	return say(speech.ForCat(cat, time.Now(), true))
}

func (s *Skill) getCatsInLocation(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	locations := slots.Locations(intent.Slots, s.hh)
	if len(locations) == 0 {
		return say(speech.UnknownPlace)
	}
	found := cats.AtLocations(cats.SortedByName(snap.Cats), locations)
	names := make([]string, 0, len(found))
	for _, c := range found {
		names = append(names, c.Name)
	}
	return say(speech.AtLocation(names, locations[0], s.hh.IsInside))
}

func (s *Skill) getEveryone(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	return say(speech.GroupedInOut(cats.SortedByName(snap.Cats), s.hh.IsInside))
}

func (s *Skill) getAgeOfCat(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	name := slots.CatName(intent.Slots)
	if !name.Resolved() {
		return say(speech.UnknownCat)
	}
	record, ok := s.hh.CatByName(name.Text)
	if !ok {
		return say(speech.UnknownCat)
	}
	age := cats.AgeAt(record.DOB, time.Now())
	return say(speech.Age(record.Name, age))
}

func (s *Skill) getDeviceStatus(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	low, okay := cats.LowBatteries(snap.Devices)
	if cats.AllBatteriesOK(low, okay, s.cfg.Battery) {
		return say("All the batteries are okay.")
	}
	if len(low) == 0 {
		// Device-count policy with flaps missing from telemetry.
		return say("No batteries are low, but I can't hear from every flap.")
	}
	names := make([]string, 0, len(low))
	for _, d := range low {
		names = append(names, d.Name)
	}
	if len(names) == 1 {
		return say(names[0] + " battery is low.")
	}
	return say(speech.JoinNames(names) + " batteries are low.")
}

func (s *Skill) getLockStatus(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	if len(snap.Devices) == 0 {
		return say("I can't see any flaps.")
	}
	var parts []string
	for _, d := range snap.Devices {
		parts = append(parts, d.Name+" is "+cats.LockState(d.Control.Locking)+".")
	}
	return say(strings.Join(parts, " "))
}

func (s *Skill) getCatPermission(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	summary := cats.Permissions(snap.Devices, s.hh, snap.Cats)
	if len(summary.KeptIn) == 0 && len(summary.AllowedOut) == 0 {
		return say("No curfews are set.")
	}
	var parts []string
	if len(summary.KeptIn) > 0 {
		parts = append(parts, bucketPhrase(summary.KeptIn, "kept in"))
	}
	if len(summary.AllowedOut) > 0 {
		parts = append(parts, bucketPhrase(summary.AllowedOut, "allowed out"))
	}
	return say(strings.Join(parts, " "))
}

func bucketPhrase(names []string, state string) string {
	verb := " are "
	if len(names) == 1 {
		verb = " is "
	}
	return speech.JoinNames(names) + verb + state + "."
}

// ── Mutating intents ─────────────────────────────────────────

func (s *Skill) setLocationOfCat(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	name := slots.CatName(intent.Slots)
	if !name.Resolved() {
		return say(speech.UnknownCat)
	}
	locations := slots.Locations(intent.Slots, s.hh)
	if len(locations) == 0 {
		return say(speech.UnknownPlace)
	}
	cat, ok := cats.FindByName(snap.Cats, name.Text)
	if !ok {
		return say(speech.UnknownCat)
	}
	if err := s.dispatcher.SetLocation(ctx, cat, locations[0]); err != nil {
		return Result{}, err
	}
	return say("Okay, " + cat.Name + " is " + locations[0] + ".")
}

func (s *Skill) setCatPermission(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	name := slots.CatName(intent.Slots)
	if !name.Resolved() {
		return say(speech.UnknownCat)
	}
	locations := slots.Locations(intent.Slots, s.hh)
	if len(locations) == 0 {
		return say(speech.UnknownPlace)
	}
	cat, ok := cats.FindByName(snap.Cats, name.Text)
	if !ok {
		return say(speech.UnknownCat)
	}

	s.dispatcher.SetPermission(ctx, cat, locations[0])
	return say("Okay, " + cat.Name + " " + permissionPhrase(s.hh.IsInside(locations[0])))
}

func (s *Skill) setGroupPermission(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	name := slots.GroupName(intent.Slots)
	if !name.Resolved() {
		return say("Sorry, I don't recognise that group.")
	}
	group, ok := s.hh.GroupByName(name.Text)
	if !ok {
		return say("Sorry, I don't recognise that group.")
	}
	locations := slots.Locations(intent.Slots, s.hh)
	if len(locations) == 0 {
		return say(speech.UnknownPlace)
	}

	var members []cats.LocatedCat
	for _, m := range group.Members {
		if cat, ok := cats.FindByName(snap.Cats, m); ok {
			members = append(members, cat)
		}
	}
	if len(members) == 0 {
		return say(speech.NoCatsFound)
	}

	s.dispatcher.SetGroupPermission(ctx, members, locations[0])

	inside := s.hh.IsInside(locations[0])
	if len(members) == 1 {
		return say("Okay, " + members[0].Name + " " + permissionPhrase(inside))
	}
	if inside {
		return say("Okay, the " + group.Name + " will be kept in.")
	}
	return say("Okay, the " + group.Name + " are allowed out.")
}

func (s *Skill) setAllCatsPermission(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	locations := slots.Locations(intent.Slots, s.hh)
	if len(locations) == 0 {
		return say(speech.UnknownPlace)
	}
	if len(snap.Cats) == 0 {
		return say(speech.NoCatsFound)
	}

	s.dispatcher.SetGroupPermission(ctx, snap.Cats, locations[0])

	if s.hh.IsInside(locations[0]) {
		return say("Okay, all the cats will be kept in.")
	}
	return say("Okay, all the cats are allowed out.")
}

func permissionPhrase(inside bool) string {
	if inside {
		return "will be kept in."
	}
	return "is allowed out."
}

func (s *Skill) setLockState(ctx context.Context, snap *Snapshot, intent alexa.Intent) (Result, error) {
	locking, ok := lockStateFromSlots(intent.Slots)
	if !ok {
		return say("Sorry, I don't know that lock state.")
	}
	s.dispatcher.SetAllLocks(ctx, locking)
	return say("Okay, the flaps are " + cats.LockState(locking) + ".")
}

// lockStateFromSlots maps the lockstate slot's canonical values onto the
// device locking codes.
func lockStateFromSlots(s map[string]alexa.Slot) (int, bool) {
	slot, ok := s["lockstate"]
	if !ok || len(slot.Resolutions) == 0 {
		return 0, false
	}
	res := slot.Resolutions[0]
	if res.Status != alexa.ResolutionMatch || len(res.Values) == 0 {
		return 0, false
	}
	switch res.Values[0].Name {
	case "unlock", "unlocked":
		return surehub.LockingUnlocked, true
	case "lock in":
		return surehub.LockingIn, true
	case "lock out":
		return surehub.LockingOut, true
	case "lock", "lock both ways":
		return surehub.LockingBoth, true
	}
	return 0, false
}
