package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/voiceforge/internal/audio"
	"github.com/example/voiceforge/internal/clone"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect and manage stored voice profiles",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesShowCmd())
	cmd.AddCommand(newProfilesDeleteCmd())
	cmd.AddCommand(newProfilesAddSampleCmd())
	cmd.AddCommand(newProfilesRemoveSampleCmd())

	return cmd
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			repo, err := openRepository(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer repo.Close()

			profiles, err := repo.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			type row struct {
				ID                   string  `json:"id"`
				Name                 string  `json:"name"`
				Language             string  `json:"language"`
				Samples              int     `json:"samples"`
				ValidSamples         int     `json:"valid_samples"`
				TotalDurationSeconds float64 `json:"total_duration_seconds"`
			}

			rows := make([]row, 0, len(profiles))
			for _, p := range profiles {
				rows = append(rows, row{
					ID:                   p.ID,
					Name:                 p.Name,
					Language:             p.Language,
					Samples:              len(p.Samples),
					ValidSamples:         p.ValidSampleCount(),
					TotalDurationSeconds: p.TotalDurationSeconds,
				})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(rows)
		},
	}
}

func newProfilesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show PROFILE_ID",
		Short: "Show one profile with its samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			repo, err := openRepository(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer repo.Close()

			profile, err := repo.FindByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return writeProfileSummary(cmd.OutOrStdout(), profile)
		},
	}
}

func newProfilesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROFILE_ID",
		Short: "Delete a profile and its samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			repo, err := openRepository(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			slog.Info("profile deleted", "id", args[0])

			return nil
		},
	}
}

func newProfilesAddSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-sample PROFILE_ID SAMPLE",
		Short: "Validate one sample and add it to an existing profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			repo, err := openRepository(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer repo.Close()

			profile, err := repo.FindByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			accept := audio.NewAcceptance(cfg.Policy.TargetSampleRate, cfg.Storage.WorkDir)
			orch := clone.NewOrchestrator(accept, cfg.VoicePolicy(), profile.Language, slog.Default())

			sample := orch.AddSample(profile, args[1])

			if err := repo.Save(cmd.Context(), profile); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}

			if !sample.Valid {
				return fmt.Errorf("sample %q rejected: %v", args[1], sample.Errors)
			}

			return writeProfileSummary(cmd.OutOrStdout(), profile)
		},
	}
}

func newProfilesRemoveSampleCmd() *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "remove-sample PROFILE_ID",
		Short: "Remove a sample from a profile by index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			repo, err := openRepository(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer repo.Close()

			profile, err := repo.FindByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := profile.RemoveSample(index); err != nil {
				return err
			}

			if !profile.Usable() {
				slog.Warn("profile is no longer usable", "id", profile.ID, "name", profile.Name)
			}

			if err := repo.Save(cmd.Context(), profile); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}

			return writeProfileSummary(cmd.OutOrStdout(), profile)
		},
	}

	cmd.Flags().IntVar(&index, "index", -1, "Zero-based sample index to remove")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}
