package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/orbitype/internal/coach"
	"github.com/verte-zerg/orbitype/internal/config"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/wordlist"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		return fmt.Errorf("config saved with errors, run orbitype config again: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := wordlist.Langs(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// applyConfig copies a file value into target unless the flag was set on
// the command line.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# orbitype configuration
# Uncomment a value to enable it. CLI flags override config values,
# environment variables override the file.

[practice]
# mode = %q           # velocity or academy
# lang = "en"             # Language code (default %q)
# words = %d              # Words per text
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set

[race]
# bots-file = %q          # Bot roster (YAML)
# avg-wpm = 0             # Match bots to this WPM (0: recent sessions)
# words = %d              # Words per race text

[store]
# driver = "sqlite"       # sqlite, postgres or mysql (ORBITYPE_DB_DRIVER)
# path = %q               # SQLite file
# dsn = ""                # postgres/mysql DSN (ORBITYPE_DB_DSN)

[redis]
# enabled = false         # Keep key stats and races in Redis (set by REDIS_ADDR)
# addr = %q
# password = ""           # REDIS_PASSWORD
# db = 0                  # REDIS_DB
# user = "local"          # Key stats namespace

[coach]
# generator = %q          # gemini, wordlist or none
# model = %q
# api-key = ""            # GEMINI_API_KEY

[server]
# addr = %q               # ORBITYPE_ADDR
`,
		defaultMode,
		defaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		config.DefaultBotsPath(),
		defaultRaceWords,
		config.DefaultDBPath(),
		defaultRedisAddr,
		defaultGenerator,
		coach.DefaultModel,
		defaultAddr,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	return nil
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("language %q not found", lang),
		"Run: orbitype langs",
		fmt.Sprintf("Add one word per line to %s", filepath.Join(config.DefaultWordListDir(), lang+".txt")),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}
