package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/voiceforge/internal/voice"
)

// Acceptance decodes raw WAV sources and normalizes accepted ones to the
// target rate, mono. It implements the sample acceptance port consumed
// by the cloning orchestrator.
type Acceptance struct {
	targetRateHz int
	workDir      string
}

// NewAcceptance returns an Acceptance writing normalized files below
// workDir.
func NewAcceptance(targetRateHz int, workDir string) *Acceptance {
	return &Acceptance{
		targetRateHz: targetRateHz,
		workDir:      workDir,
	}
}

// DecodeMetadata decodes sourceRef far enough to describe the stream.
// Undecodable input is reported as an error; no metadata exists then.
func (a *Acceptance) DecodeMetadata(sourceRef string) (voice.Metadata, error) {
	_, info, err := DecodeFile(sourceRef)
	if err != nil {
		return voice.Metadata{}, err
	}

	return metadataFromInfo(info), nil
}

// Normalize downmixes sourceRef to mono, resamples it to the target
// rate, and writes the result into the work directory. It returns the
// normalized file's path along with the final metadata the written file
// carries.
func (a *Acceptance) Normalize(sourceRef string) (string, voice.Metadata, error) {
	samples, info, err := DecodeFile(sourceRef)
	if err != nil {
		return "", voice.Metadata{}, err
	}

	mono := DownmixMono(samples, info.ChannelCount)
	resampled := Resample(mono, info.SampleRateHz, a.targetRateHz)

	data, err := EncodeWAV(resampled, a.targetRateHz)
	if err != nil {
		return "", voice.Metadata{}, fmt.Errorf("encode normalized WAV: %w", err)
	}

	if err := os.MkdirAll(a.workDir, 0o755); err != nil {
		return "", voice.Metadata{}, fmt.Errorf("create work dir: %w", err)
	}

	outPath := filepath.Join(a.workDir, normalizedName(sourceRef, a.targetRateHz))
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", voice.Metadata{}, fmt.Errorf("write normalized WAV: %w", err)
	}

	final := Info{
		SampleRateHz:    a.targetRateHz,
		ChannelCount:    1,
		BitDepth:        encodeBitDepth,
		DurationSeconds: float64(len(resampled)) / float64(a.targetRateHz),
		PeakAmplitude:   Peak(resampled),
	}

	return outPath, metadataFromInfo(final), nil
}

// normalizedName derives a deterministic output name so re-running the
// normalization of the same source overwrites rather than accumulates.
func normalizedName(sourceRef string, rateHz int) string {
	base := filepath.Base(sourceRef)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return fmt.Sprintf("%s_%dhz_mono.wav", base, rateHz)
}

func metadataFromInfo(info Info) voice.Metadata {
	return voice.Metadata{
		DurationSeconds: info.DurationSeconds,
		SampleRateHz:    info.SampleRateHz,
		ChannelCount:    info.ChannelCount,
		BitDepth:        info.BitDepth,
		PeakAmplitude:   info.PeakAmplitude,
	}
}
