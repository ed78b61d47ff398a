package server

import (
	"path/filepath"

	"skima/internal/platform/config"
)

func testConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(dir, "skima.db")
	cfg.LogLevel = "error"
	cfg.SnapshotSchedule = ""
	cfg.FrontendDir = ""
	return cfg
}
