package clone

import (
	"errors"
	"strings"
	"testing"

	"github.com/example/voiceforge/internal/voice"
)

// fakeAcceptance serves canned metadata per source ref and records
// normalize calls.
type fakeAcceptance struct {
	meta          map[string]voice.Metadata
	decodeErr     map[string]error
	normalizeErr  map[string]error
	normalized    []string
	targetRateHz  int
	normalizedExt string
}

func newFakeAcceptance() *fakeAcceptance {
	return &fakeAcceptance{
		meta:          make(map[string]voice.Metadata),
		decodeErr:     make(map[string]error),
		normalizeErr:  make(map[string]error),
		targetRateHz:  24000,
		normalizedExt: ".norm.wav",
	}
}

func (f *fakeAcceptance) DecodeMetadata(sourceRef string) (voice.Metadata, error) {
	if err := f.decodeErr[sourceRef]; err != nil {
		return voice.Metadata{}, err
	}

	return f.meta[sourceRef], nil
}

func (f *fakeAcceptance) Normalize(sourceRef string) (string, voice.Metadata, error) {
	if err := f.normalizeErr[sourceRef]; err != nil {
		return "", voice.Metadata{}, err
	}

	f.normalized = append(f.normalized, sourceRef)

	final := f.meta[sourceRef]
	final.SampleRateHz = f.targetRateHz
	final.ChannelCount = 1

	return sourceRef + f.normalizedExt, final, nil
}

func goodMeta(duration float64) voice.Metadata {
	return voice.Metadata{
		DurationSeconds: duration,
		SampleRateHz:    24000,
		ChannelCount:    1,
		BitDepth:        16,
		PeakAmplitude:   0.5,
	}
}

func newTestOrchestrator(accept SampleAcceptance) *Orchestrator {
	return NewOrchestrator(accept, voice.DefaultPolicy(), "en", nil)
}

func TestCreateProfile(t *testing.T) {
	accept := newFakeAcceptance()
	accept.meta["a.wav"] = goodMeta(10.0)
	accept.meta["b.wav"] = goodMeta(7.5)

	orch := newTestOrchestrator(accept)

	p, err := orch.CreateProfile("narrator", []string{"a.wav", "b.wav"}, "reading voice")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	if len(p.Samples) != 2 {
		t.Fatalf("len(Samples) = %d; want 2", len(p.Samples))
	}

	if p.TotalDurationSeconds != 17.5 {
		t.Errorf("TotalDurationSeconds = %v; want 17.5", p.TotalDurationSeconds)
	}

	if p.Language != "en" {
		t.Errorf("Language = %q; want default %q", p.Language, "en")
	}

	if p.ReferenceText != "reading voice" {
		t.Errorf("ReferenceText = %q", p.ReferenceText)
	}

	// Valid samples must have been normalized, in input order.
	if len(accept.normalized) != 2 || accept.normalized[0] != "a.wav" {
		t.Errorf("normalize calls = %v; want [a.wav b.wav]", accept.normalized)
	}

	// The stored source ref points at the normalized file.
	if !strings.HasSuffix(p.Samples[0].SourceRef, ".norm.wav") {
		t.Errorf("sample ref = %q; want normalized ref", p.Samples[0].SourceRef)
	}
}

func TestCreateProfile_InvalidName(t *testing.T) {
	orch := newTestOrchestrator(newFakeAcceptance())

	_, err := orch.CreateProfile("bad name!", []string{"a.wav"}, "")
	if !errors.Is(err, voice.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestCreateProfile_AllSourcesInvalid(t *testing.T) {
	accept := newFakeAcceptance()
	accept.meta["short.wav"] = goodMeta(2.0) // below the 3s minimum
	accept.decodeErr["broken.wav"] = errors.New("invalid WAV file")

	orch := newTestOrchestrator(accept)

	p, err := orch.CreateProfile("narrator", []string{"short.wav", "broken.wav"}, "")
	if !errors.Is(err, voice.ErrNoValidSamples) {
		t.Fatalf("expected ErrNoValidSamples, got %v", err)
	}

	if p != nil {
		t.Error("no profile must be constructed when every source fails")
	}

	if len(accept.normalized) != 0 {
		t.Errorf("invalid sources must not be normalized, got %v", accept.normalized)
	}
}

func TestCreateProfile_SkipsInvalidKeepsGoing(t *testing.T) {
	accept := newFakeAcceptance()
	accept.meta["short.wav"] = goodMeta(1.0)
	accept.meta["good.wav"] = goodMeta(8.0)
	accept.decodeErr["broken.wav"] = errors.New("invalid WAV file")

	orch := newTestOrchestrator(accept)

	p, err := orch.CreateProfile("narrator", []string{"short.wav", "broken.wav", "good.wav"}, "")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	// All three samples present, in input order, failures flagged.
	if len(p.Samples) != 3 {
		t.Fatalf("len(Samples) = %d; want 3", len(p.Samples))
	}

	if p.Samples[0].Valid || p.Samples[1].Valid || !p.Samples[2].Valid {
		t.Errorf("validity flags = %t %t %t; want false false true",
			p.Samples[0].Valid, p.Samples[1].Valid, p.Samples[2].Valid)
	}

	if len(p.Samples[1].Errors) == 0 || !strings.Contains(p.Samples[1].Errors[0], "decode") {
		t.Errorf("decode failure must be recorded, got %v", p.Samples[1].Errors)
	}

	if p.TotalDurationSeconds != 8.0 {
		t.Errorf("TotalDurationSeconds = %v; want 8.0", p.TotalDurationSeconds)
	}
}

func TestCreateProfile_WarningsSurviveNormalization(t *testing.T) {
	accept := newFakeAcceptance()
	accept.meta["hi_rate.wav"] = voice.Metadata{
		DurationSeconds: 6.0,
		SampleRateHz:    44100,
		ChannelCount:    1,
		PeakAmplitude:   0.5,
	}

	orch := newTestOrchestrator(accept)

	p, err := orch.CreateProfile("narrator", []string{"hi_rate.wav"}, "")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	s := p.Samples[0]
	if !s.Valid {
		t.Fatal("rate mismatch must not invalidate the sample")
	}

	if len(s.Warnings) != 1 || s.Warnings[0] != "sample rate differs from target" {
		t.Errorf("Warnings = %v; want the rate warning", s.Warnings)
	}

	// Final metadata reflects the normalized stream.
	if s.SampleRateHz != 24000 {
		t.Errorf("SampleRateHz = %d; want normalized 24000", s.SampleRateHz)
	}
}

func TestCreateProfile_NormalizeFailureRejectsSample(t *testing.T) {
	accept := newFakeAcceptance()
	accept.meta["a.wav"] = goodMeta(6.0)
	accept.meta["b.wav"] = goodMeta(6.0)
	accept.normalizeErr["a.wav"] = errors.New("disk full")

	orch := newTestOrchestrator(accept)

	p, err := orch.CreateProfile("narrator", []string{"a.wav", "b.wav"}, "")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	if p.Samples[0].Valid {
		t.Error("sample whose normalization failed must be invalid")
	}

	if !p.Samples[1].Valid {
		t.Error("later sample must be unaffected")
	}

	if p.TotalDurationSeconds != 6.0 {
		t.Errorf("TotalDurationSeconds = %v; want 6.0", p.TotalDurationSeconds)
	}
}

func TestAddSample(t *testing.T) {
	accept := newFakeAcceptance()
	accept.meta["a.wav"] = goodMeta(6.0)
	accept.meta["late.wav"] = goodMeta(4.0)

	orch := newTestOrchestrator(accept)

	p, err := orch.CreateProfile("narrator", []string{"a.wav"}, "")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	s := orch.AddSample(p, "late.wav")
	if !s.Valid {
		t.Fatalf("expected valid sample, got errors %v", s.Errors)
	}

	if len(p.Samples) != 2 {
		t.Errorf("len(Samples) = %d; want 2", len(p.Samples))
	}

	if p.TotalDurationSeconds != 10.0 {
		t.Errorf("TotalDurationSeconds = %v; want 10.0", p.TotalDurationSeconds)
	}
}

func TestAddSample_InvalidStillAppended(t *testing.T) {
	accept := newFakeAcceptance()
	accept.meta["a.wav"] = goodMeta(6.0)
	accept.decodeErr["bad.wav"] = errors.New("invalid WAV file")

	orch := newTestOrchestrator(accept)

	p, err := orch.CreateProfile("narrator", []string{"a.wav"}, "")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	s := orch.AddSample(p, "bad.wav")
	if s.Valid {
		t.Fatal("expected invalid sample")
	}

	if len(p.Samples) != 2 {
		t.Errorf("invalid sample must still be appended, len = %d", len(p.Samples))
	}

	if p.TotalDurationSeconds != 6.0 {
		t.Errorf("TotalDurationSeconds = %v; want 6.0", p.TotalDurationSeconds)
	}
}
