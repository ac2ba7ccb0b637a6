package skill_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pawtrack/catflap/internal/alexa"
	"github.com/pawtrack/catflap/internal/commands"
	"github.com/pawtrack/catflap/internal/config"
	"github.com/pawtrack/catflap/internal/skill"
	"github.com/pawtrack/catflap/internal/surehub"
)

// fakeHub serves canned telemetry and records mutating calls.
type fakeHub struct {
	mu        sync.Mutex
	pets      []surehub.Pet
	devices   []surehub.Device
	fail      bool
	positions []int64
	profiles  []int64
	locks     []int64
}

func (f *fakeHub) Pets(ctx context.Context) ([]surehub.Pet, error) {
	if f.fail {
		return nil, &surehub.APIError{StatusCode: 500, Host: "app.api.surehub.io", Path: "/api/household/42/pet"}
	}
	return f.pets, nil
}

func (f *fakeHub) Devices(ctx context.Context) ([]surehub.Device, error) {
	if f.fail {
		return nil, fmt.Errorf("boom")
	}
	return f.devices, nil
}

func (f *fakeHub) SetPosition(ctx context.Context, petID int64, where int, since time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions = append(f.positions, petID)
	return nil
}

func (f *fakeHub) SetTagProfile(ctx context.Context, deviceID, tagID int64, profile int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, deviceID)
	return nil
}

func (f *fakeHub) SetLocking(ctx context.Context, deviceID int64, locking int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks = append(f.locks, deviceID)
	return nil
}

func skillHousehold() *config.Household {
	return &config.Household{
		Flaps: []config.Flap{
			{ID: 0, Name: "unknown", In: "inside", Out: "outside"},
			{ID: 11, Name: "front door", In: "house", Out: "outside", Curfew: true},
		},
		Cats: []config.CatRecord{
			{Name: "Tom", DOB: time.Now().AddDate(-2, 0, 0)},
			{Name: "Jerry", DOB: time.Now().AddDate(0, 0, -10)},
		},
		Groups: []config.Group{
			{Name: "kittens", Members: []string{"Tom", "Jerry"}},
		},
		InsideLocations: []string{"house"},
	}
}

func newTestSkill(t *testing.T, hub *fakeHub) *skill.Skill {
	t.Helper()
	cfg := config.Load()
	hh := skillHousehold()
	return skill.New(cfg, hh, hub, commands.NewDispatcher(hub, hh))
}

func intentEnvelope(name string, slots map[string]alexa.Slot) alexa.Envelope {
	return alexa.Envelope{
		Version: "1.0",
		Request: alexa.Request{
			Type:   alexa.TypeIntent,
			Intent: alexa.Intent{Name: name, Slots: slots},
		},
	}
}

func exactSlot(canonical string) alexa.Slot {
	return alexa.Slot{
		Value: strings.ToLower(canonical),
		Resolutions: []alexa.Resolution{{
			Status: alexa.ResolutionMatch,
			Values: []alexa.ResolvedValue{{Name: canonical}},
		}},
	}
}

func speechOf(t *testing.T, resp alexa.ResponseEnvelope) string {
	t.Helper()
	if resp.Response.OutputSpeech == nil {
		t.Fatal("response has no output speech")
	}
	if resp.Response.OutputSpeech.Type == "SSML" {
		return resp.Response.OutputSpeech.SSML
	}
	return resp.Response.OutputSpeech.Text
}

func TestLaunch_KeepsSessionOpen(t *testing.T) {
	sk := newTestSkill(t, &fakeHub{})
	resp := sk.HandleRequest(context.Background(), alexa.Envelope{
		Request: alexa.Request{Type: alexa.TypeLaunch},
	})

	if got := speechOf(t, resp); got != "I know where the cats are!" {
		t.Errorf("launch speech = %q", got)
	}
	if resp.Response.ShouldEndSession {
		t.Error("launch should keep the session open")
	}
}

func TestGetLocationOfCat(t *testing.T) {
	hub := &fakeHub{
		pets: []surehub.Pet{{
			ID: 7, Name: "Tom", Tag: &surehub.Tag{ID: 700},
			Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereInside, Since: time.Now().Add(-48 * time.Hour)},
		}},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("GetLocationOfCatIntent", map[string]alexa.Slot{
		"catname": exactSlot("Tom"),
	}))

	got := speechOf(t, resp)
	if !strings.Contains(got, "Tom has been in the house for 2 days.") {
		t.Errorf("speech = %q", got)
	}
}

func TestGetLocationOfCat_PurrsAsSSML(t *testing.T) {
	hub := &fakeHub{
		pets: []surehub.Pet{{
			ID: 7, Name: "Tom",
			Position: &surehub.Position{DeviceID: 0, Where: surehub.WhereOutside, Since: time.Now().Add(-time.Hour)},
		}},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("GetLocationOfCatIntent", map[string]alexa.Slot{
		"catname": exactSlot("Tom"),
	}))

	if resp.Response.OutputSpeech.Type != "SSML" {
		t.Fatalf("speech type = %q, want SSML for purring replies", resp.Response.OutputSpeech.Type)
	}
	if !strings.Contains(resp.Response.OutputSpeech.SSML, "amzn_sfx_cat_purr_02") {
		t.Errorf("ssml = %q, want outdoor purr", resp.Response.OutputSpeech.SSML)
	}
}

func TestGetLocationOfCat_UnresolvedName(t *testing.T) {
	sk := newTestSkill(t, &fakeHub{})

	resp := sk.HandleRequest(context.Background(), intentEnvelope("GetLocationOfCatIntent", nil))

	if got := speechOf(t, resp); got != "Sorry, I don't recognise that cat." {
		t.Errorf("speech = %q", got)
	}
}

func TestRemoteFailure_BecomesBadness(t *testing.T) {
	sk := newTestSkill(t, &fakeHub{fail: true})

	resp := sk.HandleRequest(context.Background(), intentEnvelope("GetLocationOfCatIntent", map[string]alexa.Slot{
		"catname": exactSlot("Tom"),
	}))

	if got := speechOf(t, resp); got != "Aw. Badness." {
		t.Errorf("speech = %q, want the stock apology", got)
	}
	if !resp.Response.ShouldEndSession {
		t.Error("failed interaction should end the session")
	}
}

func TestGetCatsInLocation_AlphabeticalWithEmptyPhrase(t *testing.T) {
	since := time.Now().Add(-time.Hour)
	hub := &fakeHub{
		pets: []surehub.Pet{
			{ID: 1, Name: "Tom", Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereInside, Since: since}},
			{ID: 2, Name: "Jerry", Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereInside, Since: since}},
		},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("GetCatsInLocationIntent", map[string]alexa.Slot{
		"locationname": exactSlot("house"),
	}))
	if got := speechOf(t, resp); got != "Jerry and Tom are in the house." {
		t.Errorf("speech = %q", got)
	}

	resp = sk.HandleRequest(context.Background(), intentEnvelope("GetCatsInLocationIntent", map[string]alexa.Slot{
		"locationname": exactSlot("garage"),
	}))
	if got := speechOf(t, resp); got != "No kitties are garage." {
		t.Errorf("empty speech = %q", got)
	}
}

func TestGetDeviceStatus_LowBattery(t *testing.T) {
	hub := &fakeHub{
		devices: []surehub.Device{
			{ID: 11, Name: "front door", Status: surehub.DeviceStatus{Battery: 5.1}},
			{ID: 12, Name: "back door", Status: surehub.DeviceStatus{Battery: 5.6}},
		},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("GetDeviceStatusIntent", nil))
	if got := speechOf(t, resp); got != "front door battery is low." {
		t.Errorf("speech = %q", got)
	}
}

func TestGetDeviceStatus_AllOkay(t *testing.T) {
	hub := &fakeHub{
		devices: []surehub.Device{
			{ID: 11, Name: "front door", Status: surehub.DeviceStatus{Battery: 5.6}},
		},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("GetDeviceStatusIntent", nil))
	if got := speechOf(t, resp); got != "All the batteries are okay." {
		t.Errorf("speech = %q", got)
	}
}

func TestSetLocationOfCat(t *testing.T) {
	hub := &fakeHub{
		pets: []surehub.Pet{{
			ID: 7, Name: "Tom",
			Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereOutside, Since: time.Now()},
		}},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("SetLocationOfCatIntent", map[string]alexa.Slot{
		"catname": exactSlot("Tom"),
		"inout":   exactSlot("in"),
	}))

	if got := speechOf(t, resp); got != "Okay, Tom is inside." {
		t.Errorf("speech = %q", got)
	}
	if len(hub.positions) != 1 || hub.positions[0] != 7 {
		t.Errorf("position calls = %v, want [7]", hub.positions)
	}
}

func TestSetCatPermission_FansOutToCurfewFlaps(t *testing.T) {
	hub := &fakeHub{
		pets: []surehub.Pet{{
			ID: 7, Name: "Tom", Tag: &surehub.Tag{ID: 700},
			Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereInside, Since: time.Now()},
		}},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("SetCatPermissionIntent", map[string]alexa.Slot{
		"catname": exactSlot("Tom"),
		"inout":   exactSlot("in"),
	}))

	if got := speechOf(t, resp); got != "Okay, Tom will be kept in." {
		t.Errorf("speech = %q", got)
	}
	if len(hub.profiles) != 1 {
		t.Errorf("profile calls = %v, want one curfew flap", hub.profiles)
	}
}

func TestSetGroupPermission(t *testing.T) {
	since := time.Now()
	hub := &fakeHub{
		pets: []surehub.Pet{
			{ID: 1, Name: "Tom", Tag: &surehub.Tag{ID: 100}, Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereInside, Since: since}},
			{ID: 2, Name: "Jerry", Tag: &surehub.Tag{ID: 200}, Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereInside, Since: since}},
		},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("SetGroupPermissionIntent", map[string]alexa.Slot{
		"groupname": exactSlot("kittens"),
		"inout":     exactSlot("in"),
	}))

	if got := speechOf(t, resp); got != "Okay, the kittens will be kept in." {
		t.Errorf("speech = %q", got)
	}
	if len(hub.profiles) != 2 {
		t.Errorf("profile calls = %v, want 2 cats x 1 curfew flap", hub.profiles)
	}
}

func TestSetAllCatsPermission(t *testing.T) {
	since := time.Now()
	hub := &fakeHub{
		pets: []surehub.Pet{
			{ID: 1, Name: "Tom", Tag: &surehub.Tag{ID: 100}, Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereInside, Since: since}},
			{ID: 2, Name: "Jerry", Tag: &surehub.Tag{ID: 200}, Position: &surehub.Position{DeviceID: 11, Where: surehub.WhereOutside, Since: since}},
		},
	}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("SetAllCatsPermissionIntent", map[string]alexa.Slot{
		"inout": exactSlot("out"),
	}))

	if got := speechOf(t, resp); got != "Okay, all the cats are allowed out." {
		t.Errorf("speech = %q", got)
	}
	if len(hub.profiles) != 2 {
		t.Errorf("profile calls = %v, want every cat on the curfew flap", hub.profiles)
	}
}

func TestSetLockState(t *testing.T) {
	hub := &fakeHub{}
	sk := newTestSkill(t, hub)

	resp := sk.HandleRequest(context.Background(), intentEnvelope("SetLockStateIntent", map[string]alexa.Slot{
		"lockstate": exactSlot("lock"),
	}))

	if got := speechOf(t, resp); got != "Okay, the flaps are locked both ways." {
		t.Errorf("speech = %q", got)
	}
	if len(hub.locks) != 1 {
		t.Errorf("lock calls = %v, want one physical flap", hub.locks)
	}
}

func TestGetAgeOfCat_DaysOnly(t *testing.T) {
	sk := newTestSkill(t, &fakeHub{})

	resp := sk.HandleRequest(context.Background(), intentEnvelope("GetAgeOfCatIntent", map[string]alexa.Slot{
		"catname": exactSlot("Jerry"),
	}))

	got := speechOf(t, resp)
	if !strings.Contains(got, "Jerry is 10 days old.") {
		t.Errorf("speech = %q", got)
	}
}

func TestUnknownIntent(t *testing.T) {
	sk := newTestSkill(t, &fakeHub{})

	resp := sk.HandleRequest(context.Background(), intentEnvelope("OrderPizzaIntent", nil))
	if got := speechOf(t, resp); got != "Sorry, I can't help with that." {
		t.Errorf("speech = %q", got)
	}
}
