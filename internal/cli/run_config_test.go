package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"sctci/internal/config"
	"sctci/internal/flags"
)

func TestApplyChangedFlags_UnchangedFlagKeepsConfigValue(t *testing.T) {
	cfg := config.New()
	cfg.Install.CondaEnv = "venv_from_file"

	cliCfg.Install.CondaEnv = "venv_sct"
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().String(flags.FlagCondaEnv, "venv_sct", "")

	applyChangedFlags(cmd, cfg)

	if cfg.Install.CondaEnv != "venv_from_file" {
		t.Fatalf("expected file value to survive when flag unset; got %q", cfg.Install.CondaEnv)
	}
}

func TestApplyChangedFlags_ExplicitFlagOverridesConfigValue(t *testing.T) {
	cfg := config.New()
	cfg.Install.CondaEnv = "venv_from_file"

	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().String(flags.FlagCondaEnv, "venv_sct", "")
	if err := cmd.Flags().Set(flags.FlagCondaEnv, "venv_cli"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	prev := cliCfg.Install.CondaEnv
	cliCfg.Install.CondaEnv = "venv_cli"
	defer func() { cliCfg.Install.CondaEnv = prev }()

	applyChangedFlags(cmd, cfg)

	if cfg.Install.CondaEnv != "venv_cli" {
		t.Fatalf("expected explicit flag to win over file value; got %q", cfg.Install.CondaEnv)
	}
}

func TestEffectiveConfig_LoadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sctci.toml")
	content := "[install]\nconda_env = \"venv_from_file\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	prev := configPath
	configPath = path
	defer func() { configPath = prev }()

	cmd := &cobra.Command{Use: "run"}
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		t.Fatalf("effectiveConfig() error = %v", err)
	}
	if cfg.Install.CondaEnv != "venv_from_file" {
		t.Fatalf("expected conda_env from file; got %q", cfg.Install.CondaEnv)
	}
	// Settings absent from the file keep their defaults.
	if cfg.Runtime.Stages != config.DefaultStages {
		t.Fatalf("expected default stage selector; got %q", cfg.Runtime.Stages)
	}
}

func TestEffectiveConfig_MissingFile(t *testing.T) {
	prev := configPath
	configPath = filepath.Join(t.TempDir(), "absent.toml")
	defer func() { configPath = prev }()

	cmd := &cobra.Command{Use: "run"}
	if _, err := effectiveConfig(cmd); err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}
