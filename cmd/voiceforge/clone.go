package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/voiceforge/internal/audio"
	"github.com/example/voiceforge/internal/clone"
	"github.com/example/voiceforge/internal/store"
	"github.com/example/voiceforge/internal/voice"
)

func newCloneCmd() *cobra.Command {
	var name string
	var referenceText string
	var language string

	cmd := &cobra.Command{
		Use:   "clone --name NAME SAMPLE...",
		Short: "Create a voice profile from reference samples",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			lang := cfg.Profile.DefaultLanguage
			if language != "" {
				lang = language
			}

			accept := audio.NewAcceptance(cfg.Policy.TargetSampleRate, cfg.Storage.WorkDir)
			orch := clone.NewOrchestrator(accept, cfg.VoicePolicy(), lang, slog.Default())

			profile, err := orch.CreateProfile(name, args, referenceText)
			if err != nil {
				return err
			}

			repo, err := openRepository(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Save(cmd.Context(), profile); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}

			return writeProfileSummary(cmd.OutOrStdout(), profile)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (letters, digits, underscore, hyphen; max 50)")
	cmd.Flags().StringVar(&referenceText, "reference-text", "", "Transcript of the reference samples, if known")
	cmd.Flags().StringVar(&language, "language", "", "Language tag (overrides profile.default_language)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// profileSummary is the clone/profiles JSON output shape.
type profileSummary struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Language             string          `json:"language"`
	CreatedAt            string          `json:"created_at"`
	TotalDurationSeconds float64         `json:"total_duration_seconds"`
	ValidSamples         int             `json:"valid_samples"`
	Samples              []sampleSummary `json:"samples"`
}

type sampleSummary struct {
	SourceRef       string   `json:"source_ref"`
	DurationSeconds float64  `json:"duration_seconds"`
	SampleRateHz    int      `json:"sample_rate_hz"`
	ChannelCount    int      `json:"channel_count"`
	Valid           bool     `json:"valid"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

func writeProfileSummary(w io.Writer, p *voice.Profile) error {
	summary := profileSummary{
		ID:                   p.ID,
		Name:                 p.Name,
		Language:             p.Language,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		TotalDurationSeconds: p.TotalDurationSeconds,
		ValidSamples:         p.ValidSampleCount(),
		Samples:              make([]sampleSummary, 0, len(p.Samples)),
	}
	for _, s := range p.Samples {
		summary.Samples = append(summary.Samples, sampleSummary{
			SourceRef:       s.SourceRef,
			DurationSeconds: s.DurationSeconds,
			SampleRateHz:    s.SampleRateHz,
			ChannelCount:    s.ChannelCount,
			Valid:           s.Valid,
			Errors:          s.Errors,
			Warnings:        s.Warnings,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(summary)
}

func openRepository(databasePath string) (*store.SQLite, error) {
	repo, err := store.NewSQLite(databasePath)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}

	return repo, nil
}
