// Package clone builds voice profiles from raw sample sources, applying
// the skip-invalid-keep-going acceptance policy.
package clone

import (
	"fmt"
	"log/slog"

	"github.com/example/voiceforge/internal/voice"
)

// SampleAcceptance is the external capability that decodes raw audio and
// normalizes accepted samples to the pipeline's target format.
type SampleAcceptance interface {
	DecodeMetadata(sourceRef string) (voice.Metadata, error)
	Normalize(sourceRef string) (string, voice.Metadata, error)
}

// Orchestrator turns raw sample sources into voice profiles.
type Orchestrator struct {
	accept          SampleAcceptance
	policy          voice.Policy
	defaultLanguage string
	log             *slog.Logger
}

// NewOrchestrator wires the acceptance capability and the validation
// policy. A nil logger falls back to slog.Default.
func NewOrchestrator(accept SampleAcceptance, policy voice.Policy, defaultLanguage string, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}

	return &Orchestrator{
		accept:          accept,
		policy:          policy,
		defaultLanguage: defaultLanguage,
		log:             log,
	}
}

// CreateProfile processes each source in input order, collects every
// resulting sample (valid or not) into a new profile, and fails only
// when the name is invalid or no source survived validation. Invalid
// samples stay in the profile flagged invalid so their warnings and
// errors reach the caller.
func (o *Orchestrator) CreateProfile(name string, sources []string, referenceText string) (*voice.Profile, error) {
	profile, err := voice.NewProfile(name, o.defaultLanguage, referenceText)
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		s := o.processSource(src)
		profile.AddSample(s)

		if !s.Valid {
			o.log.Warn("sample rejected", "source", src, "errors", s.Errors)
		} else if len(s.Warnings) > 0 {
			o.log.Info("sample accepted with warnings", "source", src, "warnings", s.Warnings)
		}
	}

	if !profile.Usable() {
		return nil, fmt.Errorf("create profile %q: %w", name, voice.ErrNoValidSamples)
	}

	o.log.Info("profile created",
		"id", profile.ID,
		"name", profile.Name,
		"samples", len(profile.Samples),
		"valid_samples", profile.ValidSampleCount(),
		"total_duration_s", profile.TotalDurationSeconds)

	return profile, nil
}

// AddSample runs the per-source acceptance pipeline against an existing
// profile. The sample is appended whatever the outcome, mirroring
// CreateProfile, and the derived fields are recomputed by the aggregate.
func (o *Orchestrator) AddSample(profile *voice.Profile, source string) voice.Sample {
	s := o.processSource(source)
	profile.AddSample(s)

	if !s.Valid {
		o.log.Warn("sample rejected", "profile", profile.ID, "source", source, "errors", s.Errors)
	}

	return s
}

// processSource decodes, validates, and (for valid samples) normalizes
// one source. Decode and normalize failures become invalid samples, not
// returned errors: a single bad source never aborts profile creation.
func (o *Orchestrator) processSource(src string) voice.Sample {
	meta, err := o.accept.DecodeMetadata(src)
	if err != nil {
		return voice.RejectedSample(src, fmt.Sprintf("decode: %v", err))
	}

	result := o.policy.Validate(meta)
	if !result.Valid {
		return voice.NewSample(src, meta, result)
	}

	normalizedRef, finalMeta, err := o.accept.Normalize(src)
	if err != nil {
		return voice.RejectedSample(src, fmt.Sprintf("normalize: %v", err))
	}

	// The sample carries the normalized stream's metadata but keeps the
	// warnings raised against the original input.
	return voice.NewSample(normalizedRef, finalMeta, result)
}
