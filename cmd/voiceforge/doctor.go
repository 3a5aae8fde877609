package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/voiceforge/internal/config"
	"github.com/example/voiceforge/internal/doctor"
	"github.com/example/voiceforge/internal/engine"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run environment and engine preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			backend, err := config.NormalizeBackend(cfg.Engine.Backend)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "engine backend: %s\n", backend)

			exe := cfg.Engine.CLIPath
			if exe == "" {
				exe = "voice-tts"
			}

			dcfg := doctor.Config{
				TTSVersion: func() (string, error) {
					return probeTTSVersion(exe)
				},
				SkipTTS: backend != config.BackendCLI,
				ServiceHealth: func() error {
					httpEngine := engine.NewHTTPEngine(cfg.Engine.ServiceURL, 10*time.Second)
					return httpEngine.Health(cmd.Context())
				},
				SkipService:    backend != config.BackendHTTP,
				Dirs:           []string{cfg.Storage.WorkDir, cfg.Storage.OutputDir},
				ReferenceFiles: collectReferenceFiles(cmd.Context(), cfg),
			}

			result := doctor.Run(dcfg, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}
}

// probeTTSVersion runs `<exe> --version` and returns its output.
func probeTTSVersion(exe string) (string, error) {
	out, err := exec.CommandContext(context.Background(), exe, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", exe, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// collectReferenceFiles gathers the reference sample paths of every stored
// profile so the doctor can report ones that went missing on disk. A store
// that cannot be opened yields no paths; the batch command will surface that
// error on its own.
func collectReferenceFiles(ctx context.Context, cfg config.Config) []string {
	repo, err := openRepository(cfg.Storage.DatabasePath)
	if err != nil {
		return nil
	}
	defer repo.Close()

	profiles, err := repo.ListAll(ctx)
	if err != nil {
		return nil
	}

	var paths []string
	for _, p := range profiles {
		if ref, ok := p.ReferenceSample(); ok {
			paths = append(paths, ref.SourceRef)
		}
	}

	return paths
}
