package cmd

import (
	"testing"

	"github.com/wrfdata/wrf-exporter/internal/config"
)

func TestConfigRows_CoverEveryKey(t *testing.T) {
	cfg := config.Config{}
	cfg.Steam.Password = "secret"

	rows := configRows(cfg)
	got := make(map[string]string, len(rows))
	for _, row := range rows {
		got[row[0]] = row[1]
	}

	want := []string{
		"log_level", "log_json", "log_dir", "metrics_addr",
		"deps.install_dir", "deps.manifest_path", "deps.force",
		"steam.username", "steam.password", "steam.game_dir",
		"steam.manifest_id", "steam.force",
		"mapper.module_path", "mapper.injector_path", "mapper.game_executable",
		"mapper.output_dir", "mapper.destination", "mapper.force",
		"mapper.find_timeout_seconds", "mapper.settle_seconds",
		"export.output_dir", "export.preset", "export.force",
	}
	for _, key := range want {
		if _, ok := got[key]; !ok {
			t.Errorf("Table is missing key %s", key)
		}
	}
}

func TestConfigRows_RedactsPassword(t *testing.T) {
	cfg := config.Config{}
	cfg.Steam.Password = "hunter2"

	for _, row := range configRows(cfg) {
		if row[0] == "steam.password" {
			if row[1] != "(set)" {
				t.Errorf("Password row = %q, must never show the value", row[1])
			}
			return
		}
	}
	t.Error("steam.password row missing")
}
