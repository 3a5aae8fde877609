package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/example/voiceforge/internal/audio"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect SAMPLE",
		Short: "Decode one sample and report what the validator would say",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			accept := audio.NewAcceptance(cfg.Policy.TargetSampleRate, cfg.Storage.WorkDir)

			meta, err := accept.DecodeMetadata(args[0])
			if err != nil {
				return err
			}

			result := cfg.VoicePolicy().Validate(meta)

			report := struct {
				SourceRef       string   `json:"source_ref"`
				DurationSeconds float64  `json:"duration_seconds"`
				SampleRateHz    int      `json:"sample_rate_hz"`
				ChannelCount    int      `json:"channel_count"`
				BitDepth        int      `json:"bit_depth"`
				PeakAmplitude   float64  `json:"peak_amplitude"`
				Valid           bool     `json:"valid"`
				Errors          []string `json:"errors,omitempty"`
				Warnings        []string `json:"warnings,omitempty"`
			}{
				SourceRef:       args[0],
				DurationSeconds: meta.DurationSeconds,
				SampleRateHz:    meta.SampleRateHz,
				ChannelCount:    meta.ChannelCount,
				BitDepth:        meta.BitDepth,
				PeakAmplitude:   meta.PeakAmplitude,
				Valid:           result.Valid,
				Errors:          result.Errors,
				Warnings:        result.Warnings,
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(report)
		},
	}
}
