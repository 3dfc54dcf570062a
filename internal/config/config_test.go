package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Practice.Words)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[practice]
mode = "academy"
words = 40
caps = 0.25

[race]
avg-wpm = 70

[store]
driver = "postgres"
dsn = "postgres://localhost/orbitype"

[redis]
enabled = true
addr = "localhost:6379"
db = 2

[coach]
generator = "wordlist"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "academy", String(cfg.Practice.Mode, ""))
	assert.Equal(t, 40, Int(cfg.Practice.Words, 0))
	assert.InDelta(t, 0.25, *cfg.Practice.CapsPct, 1e-9)
	assert.Nil(t, cfg.Practice.PunctPct)
	assert.Equal(t, 70, Int(cfg.Race.AvgWPM, 0))
	assert.Equal(t, "postgres", String(cfg.Store.Driver, "sqlite"))
	assert.True(t, Bool(cfg.Redis.Enabled, false))
	assert.Equal(t, 2, Int(cfg.Redis.DB, 0))
	assert.Equal(t, "wordlist", String(cfg.Coach.Generator, ""))
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[practice]\nfocus-weak = true\n"), 0o644))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "practice.focus-weak")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("ORBITYPE_DB_DRIVER", "mysql")
	t.Setenv("ORBITYPE_DB_DSN", "")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "3")

	file := "from-file"
	cfg := FileConfig{Store: StoreConfig{DSN: &file}}
	ApplyEnv(&cfg)

	assert.Equal(t, "secret", String(cfg.Coach.APIKey, ""))
	assert.Equal(t, "mysql", String(cfg.Store.Driver, ""))
	assert.Equal(t, "from-file", String(cfg.Store.DSN, ""))
	assert.Equal(t, "cache:6379", String(cfg.Redis.Addr, ""))
	assert.True(t, Bool(cfg.Redis.Enabled, false))
	assert.Equal(t, 3, Int(cfg.Redis.DB, 0))
}

func TestApplyEnvKeepsExplicitRedisDisable(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	disabled := false
	cfg := FileConfig{Redis: RedisConfig{Enabled: &disabled}}
	ApplyEnv(&cfg)
	assert.False(t, Bool(cfg.Redis.Enabled, true))
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	assert.Equal(t, filepath.Join("/cfg", "orbitype", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/cfg", "orbitype", "wordlists"), DefaultWordListDir())
	assert.Equal(t, filepath.Join("/cfg", "orbitype", "bots.yaml"), DefaultBotsPath())
	assert.Equal(t, filepath.Join("/data", "orbitype", "orbitype.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/state", "orbitype", "orbitype.log"), DefaultLogPath())
}
