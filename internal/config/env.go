package config

import (
	"os"
	"strconv"
)

// ApplyEnv overrides file values with environment variables. The environment
// wins over the file; command-line flags still win over both.
func ApplyEnv(cfg *FileConfig) {
	setString(&cfg.Coach.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Store.Driver, "ORBITYPE_DB_DRIVER")
	setString(&cfg.Store.DSN, "ORBITYPE_DB_DSN")
	if setString(&cfg.Redis.Addr, "REDIS_ADDR") && cfg.Redis.Enabled == nil {
		enabled := true
		cfg.Redis.Enabled = &enabled
	}
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = &db
		}
	}
	setString(&cfg.Server.Addr, "ORBITYPE_ADDR")
}

func setString(target **string, key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	*target = &v
	return true
}

// String returns *p or def when p is nil.
func String(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// Int returns *p or def when p is nil.
func Int(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// Bool returns *p or def when p is nil.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
