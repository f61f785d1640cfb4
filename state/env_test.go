package state

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"fser/persist/ini"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	if ctx == nil {
		t.Fatal("ContextWithEnv() returned nil")
	}

	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}

	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
}

func TestEnvFromContext(t *testing.T) {
	t.Run("valid context", func(t *testing.T) {
		ctx := ContextWithEnv(context.Background())
		env := EnvFromContext(ctx)

		if env == nil {
			t.Error("Expected non-nil environment")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic when env not in context")
			}
		}()

		// Use plain context without env
		EnvFromContext(context.Background())
	})
}

func TestLocalEnv_Uptime(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)

	time.Sleep(10 * time.Millisecond)
	uptime := env.Uptime()

	if uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
	if uptime > 1*time.Second {
		t.Errorf("Uptime() = %v, unexpectedly large", uptime)
	}
}

func TestLocalEnv_Setup(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		env := EnvFromContext(ContextWithEnv(context.Background()))
		if err := env.Setup(""); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if env.Cfg == nil || env.Log == nil {
			t.Fatal("Setup() left environment incomplete")
		}
		if got, want := ini.DefaultFileName(env.INI...), ini.DefaultFileName(); got != want {
			t.Errorf("default INI file = %q, want %q", got, want)
		}

		path := filepath.Join(t.TempDir(), "utf8.ini")
		if err := ini.SetValue(path, "Main", "Text", "Привет", env.INI...); err != nil {
			t.Fatalf("SetValue() error = %v", err)
		}
		if data, _ := os.ReadFile(path); !utf8.Valid(data) {
			t.Errorf("default codepage produced non UTF-8 file:\n%s", data)
		}
	})

	t.Run("codepage and base dir", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.yaml")
		content := "version: 1\nstorage:\n  base_dir: " + dir + "\nformats:\n  ini:\n    codepage: windows-1251\nlogging:\n  console:\n    level: none\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		env := EnvFromContext(ContextWithEnv(context.Background()))
		if err := env.Setup(configPath); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		path := ini.DefaultFileName(env.INI...)
		if filepath.Dir(path) != dir {
			t.Fatalf("default INI file = %q, want it in %q", path, dir)
		}
		if err := ini.SetValue(path, "Main", "Text", "Привет", env.INI...); err != nil {
			t.Fatalf("SetValue() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		encoded, _ := charmap.Windows1251.NewEncoder().String("Привет")
		if !strings.Contains(string(data), encoded) {
			t.Errorf("file is not windows-1251:\n%s", data)
		}
	})

	t.Run("bad configuration", func(t *testing.T) {
		env := EnvFromContext(ContextWithEnv(context.Background()))
		if err := env.Setup("/nonexistent/config.yaml"); err == nil {
			t.Fatal("Expected error for nonexistent file")
		}
		if env.Log != nil {
			t.Error("logger prepared for failed configuration")
		}
	})
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	t.Run("with logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}

		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Error("Expected restoreStdLog to be set")
		}

		env.RestoreStdLog()
	})

	t.Run("without logger", func(t *testing.T) {
		env := &LocalEnv{}

		// Should not panic
		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("Expected restoreStdLog to remain nil")
		}
		env.RestoreStdLog()
	})
}

func TestLocalEnv_RedirectAndRestore(t *testing.T) {
	env := &LocalEnv{
		Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
	}

	// Test multiple redirect/restore cycles
	for i := range 3 {
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Errorf("Iteration %d: restoreStdLog not set", i)
		}
		env.RestoreStdLog()
	}
}
