package config

import (
	"fmt"
	"os"
	"strconv"
)

// Battery "all okay" policies. The skill has shipped with two different
// definitions of "every battery is fine"; both are kept and selected by
// configuration.
const (
	// BatteryPolicyAllClear reports all-okay whenever no device is below
	// the low threshold.
	BatteryPolicyAllClear = "all-clear"
	// BatteryPolicyDeviceCount additionally requires that the number of
	// healthy devices matches the configured device count; a flap that
	// fails to report at all is not counted as okay.
	BatteryPolicyDeviceCount = "device-count"
)

// Config holds all configuration for the catflap skill server.
type Config struct {
	Port    int
	Version string

	// HouseholdPath points at the YAML file describing flaps, cats and
	// groups. See Household.
	HouseholdPath string

	SureHub   SureHubConfig
	Telemetry TelemetryConfig
	Battery   BatteryConfig
}

// SureHubConfig configures the outbound pet-tracking API client.
type SureHubConfig struct {
	BaseURL     string
	Token       string
	HouseholdID int64
	TimeoutSecs int
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// BatteryConfig selects the battery all-okay policy.
type BatteryConfig struct {
	Policy      string
	DeviceCount int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:          envInt("CATFLAP_PORT", 8080),
		Version:       envStr("CATFLAP_VERSION", "0.2.0"),
		HouseholdPath: envStr("CATFLAP_HOUSEHOLD", "household.yaml"),
		SureHub: SureHubConfig{
			BaseURL:     envStr("SUREHUB_BASE_URL", "https://app.api.surehub.io"),
			Token:       envStr("SUREHUB_TOKEN", ""),
			HouseholdID: envInt64("SUREHUB_HOUSEHOLD_ID", 0),
			TimeoutSecs: envInt("SUREHUB_TIMEOUT_SECS", 10),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "catflap-skill"),
		},
		Battery: BatteryConfig{
			Policy:      envStr("BATTERY_POLICY", BatteryPolicyAllClear),
			DeviceCount: envInt("BATTERY_DEVICE_COUNT", 0),
		},
	}
}

// Validate reports configuration errors that would otherwise only surface
// mid-request.
func (c *Config) Validate() error {
	if c.SureHub.Token == "" {
		return fmt.Errorf("SUREHUB_TOKEN is required")
	}
	if c.SureHub.HouseholdID == 0 {
		return fmt.Errorf("SUREHUB_HOUSEHOLD_ID is required")
	}
	switch c.Battery.Policy {
	case BatteryPolicyAllClear:
	case BatteryPolicyDeviceCount:
		if c.Battery.DeviceCount <= 0 {
			return fmt.Errorf("BATTERY_DEVICE_COUNT must be positive with policy %q", c.Battery.Policy)
		}
	default:
		return fmt.Errorf("unknown battery policy %q", c.Battery.Policy)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
