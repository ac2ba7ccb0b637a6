package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pawtrack/catflap/internal/config"
)

const householdYAML = `
flaps:
  - id: 0
    name: unknown
    in: inside
    out: outside
  - id: 123456
    name: front door
    in: house
    out: outside
    curfew: true
cats:
  - name: Tom
    dob: 2019-05-01
  - name: Bagpuss
    dob: 2008-01-01
    dod: 2023-03-10
groups:
  - name: kittens
    members: [Tom]
inside_locations: [house, garage, garden room]
`

func writeHousehold(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "household.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadHousehold(t *testing.T) {
	hh, err := config.LoadHousehold(writeHousehold(t, householdYAML))
	if err != nil {
		t.Fatalf("LoadHousehold() error = %v", err)
	}

	if len(hh.Flaps) != 2 {
		t.Errorf("flaps = %d, want 2", len(hh.Flaps))
	}
	flap, ok := hh.FlapByID(123456)
	if !ok || flap.In != "house" || !flap.Curfew {
		t.Errorf("front door flap = %+v", flap)
	}

	tom, ok := hh.CatByName("Tom")
	if !ok {
		t.Fatal("Tom missing")
	}
	wantDOB := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)
	if !tom.DOB.Equal(wantDOB) {
		t.Errorf("Tom dob = %v, want %v", tom.DOB, wantDOB)
	}
	if tom.DOD != nil {
		t.Error("Tom should not have a dod")
	}

	bagpuss, _ := hh.CatByName("Bagpuss")
	if bagpuss.DOD == nil {
		t.Error("Bagpuss dod missing")
	}

	curfew := hh.CurfewFlaps()
	if len(curfew) != 1 || curfew[0].ID != 123456 {
		t.Errorf("curfew flaps = %+v", curfew)
	}
}

func TestLoadHousehold_RequiresFallbackFlap(t *testing.T) {
	_, err := config.LoadHousehold(writeHousehold(t, `
flaps:
  - id: 123456
    name: front door
    in: house
    out: outside
`))
	if err == nil {
		t.Fatal("LoadHousehold() = nil error, want fallback-flap validation failure")
	}
}

func TestLoadHousehold_RejectsUnknownGroupMember(t *testing.T) {
	_, err := config.LoadHousehold(writeHousehold(t, `
flaps:
  - id: 0
    in: inside
    out: outside
cats:
  - name: Tom
    dob: 2019-05-01
groups:
  - name: kittens
    members: [Nobody]
`))
	if err == nil {
		t.Fatal("LoadHousehold() = nil error, want unknown-member validation failure")
	}
}

func TestIsInside(t *testing.T) {
	hh := &config.Household{InsideLocations: []string{"house", "garden room"}}

	for _, label := range []string{"inside", "house", "garden room"} {
		if !hh.IsInside(label) {
			t.Errorf("IsInside(%q) = false, want true", label)
		}
	}
	for _, label := range []string{"outside", "the shed"} {
		if hh.IsInside(label) {
			t.Errorf("IsInside(%q) = true, want false", label)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := config.Load()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with no token should fail")
	}

	cfg.SureHub.Token = "sekrit"
	cfg.SureHub.HouseholdID = 42
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.Battery.Policy = config.BatteryPolicyDeviceCount
	if err := cfg.Validate(); err == nil {
		t.Error("device-count policy without a count should fail")
	}
	cfg.Battery.DeviceCount = 3
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
