package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"fser/persist/ini"
	"fser/state"
)

func setupEnv(t *testing.T, yaml string) context.Context {
	t.Helper()

	ctx := state.ContextWithEnv(context.Background())
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(yaml), 0644); err != nil {
		t.Fatalf("unable to write configuration: %v", err)
	}
	if err := state.EnvFromContext(ctx).Setup(configPath); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	return ctx
}

func runIni(ctx context.Context, args ...string) error {
	return iniCommand().Run(ctx, append([]string{"ini"}, args...))
}

func TestIniSetDefaultFile(t *testing.T) {
	dir := t.TempDir()
	ctx := setupEnv(t, "version: 1\nstorage:\n  base_dir: "+dir+"\nlogging:\n  console:\n    level: none\n")

	if err := runIni(ctx, "set", "Main", "Count", "42"); err != nil {
		t.Fatalf("ini set error = %v", err)
	}
	path := ini.DefaultFileName(ini.WithBaseDir(dir))
	if filepath.Dir(path) != dir {
		t.Fatalf("default file %q is not under base dir", path)
	}
	if got := ini.GetInt(path, "Main", "Count"); got != 42 {
		t.Fatalf("Count = %d, want 42", got)
	}
	if err := runIni(ctx, "get", "Main", "Count"); err != nil {
		t.Fatalf("ini get error = %v", err)
	}
	if err := runIni(ctx, "get", "Main", "Absent"); err == nil {
		t.Fatal("ini get succeeded for absent key")
	}
}

func TestIniCodepage(t *testing.T) {
	ctx := setupEnv(t, "version: 1\nformats:\n  ini:\n    codepage: windows-1251\nlogging:\n  console:\n    level: none\n")
	dir := t.TempDir()
	encoded, _ := charmap.Windows1251.NewEncoder().String("Привет")

	configured := filepath.Join(dir, "configured.ini")
	if err := runIni(ctx, "set", "--file", configured, "Main", "Text", "Привет"); err != nil {
		t.Fatalf("ini set error = %v", err)
	}
	if data, _ := os.ReadFile(configured); !strings.Contains(string(data), encoded) {
		t.Fatalf("configured codepage not applied:\n%s", data)
	}

	override := filepath.Join(dir, "override.ini")
	if err := runIni(ctx, "set", "--file", override, "--codepage", "utf-8", "Main", "Text", "Привет"); err != nil {
		t.Fatalf("ini set error = %v", err)
	}
	if got := ini.GetString(override, "Main", "Text"); got != "Привет" {
		t.Fatalf("Text = %q, want UTF-8 text", got)
	}

	if err := runIni(ctx, "dump", "--file", override, "--codepage", "no-such-codepage"); err == nil {
		t.Fatal("ini dump accepted unknown codepage")
	}
}
