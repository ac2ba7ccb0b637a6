// Package surehub is a minimal client for the SureHub pet-tracking cloud
// API: pet positions, device status and the three mutating endpoints the
// skill uses (position, tag profile, locking).
package surehub

import "time"

// Position direction codes. The upstream API models finer-grained states,
// but the skill only deals in two sides of a door.
const (
	WhereInside  = 1
	WhereOutside = 2
)

// Per-tag permission profiles.
const (
	ProfileAllowedOut = 2
	ProfileKeptIn     = 3
)

// Device locking states.
const (
	LockingUnlocked = 0
	LockingIn       = 1
	LockingOut      = 2
	LockingBoth     = 3
)

// Pet is the raw pet telemetry record. Position and Tag are omitted by the
// API for pets with no flap history.
type Pet struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Tag      *Tag      `json:"tag,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// Tag identifies the collar/chip tag used for permission commands.
type Tag struct {
	ID int64 `json:"id"`
}

// Position is a pet's last known flap transit.
type Position struct {
	DeviceID int64     `json:"device_id"`
	Where    int       `json:"where"`
	Since    time.Time `json:"since"`
}

// Device is the raw device telemetry record.
type Device struct {
	ID      int64         `json:"id"`
	Name    string        `json:"name"`
	Status  DeviceStatus  `json:"status"`
	Control DeviceControl `json:"control"`
	Tags    []DeviceTag   `json:"tags,omitempty"`
}

// DeviceStatus carries the battery voltage reading.
type DeviceStatus struct {
	Battery float64 `json:"battery"`
}

// DeviceControl carries the lock state.
type DeviceControl struct {
	Locking int `json:"locking"`
}

// DeviceTag is a per-device, per-tag permission entry.
type DeviceTag struct {
	ID      int64 `json:"id"`
	Profile int   `json:"profile"`
}
