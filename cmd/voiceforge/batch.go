package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/voiceforge/internal/batch"
	"github.com/example/voiceforge/internal/config"
	"github.com/example/voiceforge/internal/engine"
	"github.com/example/voiceforge/internal/script"
)

func newBatchCmd() *cobra.Command {
	var profileID string
	var scriptPath string
	var outDir string
	var backendOverride string
	var engineArgs []string

	cmd := &cobra.Command{
		Use:   "batch --profile PROFILE_ID --script SCRIPT",
		Short: "Synthesize every segment of a script with one profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			segments, err := readScript(scriptPath)
			if err != nil {
				return err
			}

			if empty := script.EmptySegments(segments); len(empty) > 0 {
				slog.Warn("script has empty segments; they will be recorded as failed", "segments", empty)
			}

			repo, err := openRepository(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer repo.Close()

			profile, err := repo.FindByID(cmd.Context(), profileID)
			if err != nil {
				return err
			}

			eng, err := buildEngine(cfg, backendOverride, engineArgs)
			if err != nil {
				return err
			}

			out := cfg.Storage.OutputDir
			if outDir != "" {
				out = outDir
			}

			orch := batch.NewOrchestrator(eng, out,
				batch.WithCallTimeout(time.Duration(cfg.Engine.TimeoutSeconds)*time.Second),
				batch.WithLogger(slog.Default()))

			manifest, runErr := orch.Run(cmd.Context(), profile, segments)

			// A partial manifest from a cancelled run is still written so
			// completed segments are not lost.
			if len(manifest.Results) > 0 {
				manifestPath := filepath.Join(out, "manifest.json")
				if err := manifest.WriteFile(manifestPath); err != nil {
					return err
				}
				slog.Info("manifest written", "path", manifestPath)
			}

			if runErr != nil {
				return runErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "batch complete: %d succeeded, %d failed\n",
				manifest.Successes, manifest.Failures)

			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "Profile ID to synthesize with")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to the marker-delimited script ('-' for stdin)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (overrides storage.output_dir)")
	cmd.Flags().StringVar(&backendOverride, "engine", "", "Engine backend override (cli|http)")
	cmd.Flags().StringArrayVar(&engineArgs, "engine-arg", nil, "Pass-through TTS flag in key=value form (cli backend, repeatable)")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func readScript(path string) ([]script.Segment, error) {
	if path == "-" {
		return script.Parse(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	return script.Parse(f)
}

// buildEngine selects the synthesis engine from the flag override or the
// configured backend.
func buildEngine(cfg config.Config, override string, extraArgs []string) (batch.SynthesisEngine, error) {
	backend := override
	if backend == "" {
		backend = cfg.Engine.Backend
	}

	normalized, err := config.NormalizeBackend(backend)
	if err != nil {
		return nil, err
	}

	switch normalized {
	case config.BackendHTTP:
		if len(extraArgs) > 0 {
			return nil, fmt.Errorf("--engine-arg is only supported with the cli backend")
		}

		return engine.NewHTTPEngine(cfg.Engine.ServiceURL, time.Duration(cfg.Engine.TimeoutSeconds)*time.Second), nil
	default:
		return &engine.CLIEngine{
			ExecutablePath: cfg.Engine.CLIPath,
			ConfigPath:     cfg.Engine.CLIConfigPath,
			Quiet:          cfg.Engine.Quiet,
			ExtraArgs:      extraArgs,
			Stderr:         os.Stderr,
		}, nil
	}
}
