package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/voiceforge/internal/config"
)

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"clone", "profiles", "batch", "inspect", "doctor"}
	for _, name := range want {
		found := false

		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		if !found {
			t.Errorf("expected subcommand %q not found in root", name)
		}
	}
}

func TestNewRootCmd_HasPersistentConfigFlag(t *testing.T) {
	root := NewRootCmd()
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("expected --config persistent flag to be registered")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseLogLevel(%q) = %v, nil; want error", tt.input, got)
			}

			continue
		}

		if err != nil {
			t.Errorf("parseLogLevel(%q) unexpected error: %v", tt.input, err)
			continue
		}

		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v; want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetupLogger_DoesNotPanic(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		setupLogger(level)
	}
}

func TestSetupLogger_InvalidLevelFallsBackToInfo(_ *testing.T) {
	// Should not panic on invalid level.
	setupLogger("not-a-level")
}

func TestRequireConfig_FailsWhenNotInitialized(t *testing.T) {
	orig := activeCfg

	t.Cleanup(func() { activeCfg = orig })

	// Zero-value config has an empty Storage.DatabasePath → requireConfig
	// returns an error.
	activeCfg = config.Config{}

	_, err := requireConfig()
	if err == nil {
		t.Fatal("expected error when config is not loaded")
	}
}

func TestRequireConfig_SucceedsWhenLoaded(t *testing.T) {
	orig := activeCfg

	t.Cleanup(func() { activeCfg = orig })

	activeCfg = config.Config{
		Storage: config.StorageConfig{DatabasePath: "/some/profiles.db"},
	}

	got, err := requireConfig()
	if err != nil {
		t.Fatalf("requireConfig returned unexpected error: %v", err)
	}

	if got.Storage.DatabasePath != "/some/profiles.db" {
		t.Errorf("unexpected DatabasePath: %q", got.Storage.DatabasePath)
	}
}

func TestReadScript_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.txt")

	content := "[INTRO]\nHello there.\n[OUTRO]\nGoodbye.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	segments, err := readScript(path)
	if err != nil {
		t.Fatalf("readScript: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("len(segments) = %d; want 2", len(segments))
	}

	if segments[0].Name != "INTRO" || segments[1].Name != "OUTRO" {
		t.Errorf("segment names = %q, %q", segments[0].Name, segments[1].Name)
	}
}

func TestReadScript_MissingFile(t *testing.T) {
	_, err := readScript("/nonexistent/script.txt")
	if err == nil {
		t.Error("expected error for missing script file")
	}
}

func TestBuildEngine(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name      string
		override  string
		extraArgs []string
		wantErr   bool
	}{
		{"default cli", "", nil, false},
		{"http override", "http", nil, false},
		{"cli with args", "cli", []string{"temperature=0.6"}, false},
		{"http rejects engine args", "http", []string{"temperature=0.6"}, true},
		{"unknown backend", "grpc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := buildEngine(cfg, tt.override, tt.extraArgs)
			if tt.wantErr {
				if err == nil {
					t.Errorf("buildEngine(%q) = %T, nil; want error", tt.override, eng)
				}

				return
			}

			if err != nil {
				t.Errorf("buildEngine(%q) unexpected error: %v", tt.override, err)
				return
			}

			if eng == nil {
				t.Errorf("buildEngine(%q) returned nil engine", tt.override)
			}
		})
	}
}
