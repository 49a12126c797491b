package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newTestViper())
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.LogLevel != "INFO" {
		t.Errorf("Expected default log level INFO, got %s", cfg.LogLevel)
	}
	if cfg.Mapper.FindTimeoutSeconds != 60 {
		t.Errorf("Expected default find timeout 60, got %d", cfg.Mapper.FindTimeoutSeconds)
	}
	if cfg.Mapper.SettleSeconds != 10 {
		t.Errorf("Expected default settle 10, got %d", cfg.Mapper.SettleSeconds)
	}
	if cfg.Steam.ManifestID != "latest" {
		t.Errorf("Expected default manifest id latest, got %s", cfg.Steam.ManifestID)
	}
	if cfg.Export.Preset != "WarRobotsFrontiers" {
		t.Errorf("Expected default preset WarRobotsFrontiers, got %s", cfg.Export.Preset)
	}
}

func TestLoad_RejectsNonPositiveTimeouts(t *testing.T) {
	v := newTestViper()
	v.Set("mapper.find_timeout_seconds", 0)
	if _, err := Load(v); err == nil {
		t.Error("Expected error for zero find timeout")
	}

	v = newTestViper()
	v.Set("mapper.settle_seconds", -5)
	if _, err := Load(v); err == nil {
		t.Error("Expected error for negative settle window")
	}
}

func TestGameExecutablePath(t *testing.T) {
	v := newTestViper()
	v.Set("steam.game_dir", filepath.Join("game", "files"))
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	got := cfg.GameExecutablePath()
	if !strings.HasPrefix(got, filepath.Join("game", "files")) {
		t.Errorf("Executable path %s not under game dir", got)
	}
	if filepath.Base(got) != "WRFrontiers-Win64-Shipping.exe" {
		t.Errorf("Unexpected executable name: %s", filepath.Base(got))
	}
}

func TestGameProcessName(t *testing.T) {
	cfg, err := Load(newTestViper())
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.GameProcessName(); got != "WRFrontiers-Win64-Shipping.exe" {
		t.Errorf("Expected shipping process name, got %s", got)
	}
}

func TestValidateMapper(t *testing.T) {
	v := newTestViper()
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	err = cfg.ValidateMapper()
	if err == nil {
		t.Fatal("Expected validation error when required fields are empty")
	}
	for _, want := range []string{"steam.game_dir", "mapper.output_dir", "mapper.destination"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validation error should name %s: %v", want, err)
		}
	}

	v.Set("steam.game_dir", "game")
	v.Set("mapper.output_dir", "out")
	v.Set("mapper.destination", filepath.Join("out", "Mappings.usmap"))
	cfg, err = Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ValidateMapper(); err != nil {
		t.Errorf("Expected valid mapper config, got %v", err)
	}
}

func TestValidateSteam(t *testing.T) {
	v := newTestViper()
	v.Set("steam.game_dir", "game")
	v.Set("steam.username", "user")
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	err = cfg.ValidateSteam()
	if err == nil || !strings.Contains(err.Error(), "steam.password") {
		t.Errorf("Expected missing password error, got %v", err)
	}

	v.Set("steam.password", "secret")
	cfg, _ = Load(v)
	if err := cfg.ValidateSteam(); err != nil {
		t.Errorf("Expected valid steam config, got %v", err)
	}
}
