package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/voiceforge/internal/voice"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "profiles.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newStoredProfile(t *testing.T, name string) *voice.Profile {
	t.Helper()

	p, err := voice.NewProfile(name, "en", "calm reading voice")
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}

	p.AddSample(voice.Sample{
		SourceRef:       "work/a_24000hz_mono.wav",
		DurationSeconds: 10.5,
		SampleRateHz:    24000,
		ChannelCount:    1,
		BitDepth:        16,
		Valid:           true,
		Warnings:        []string{"sample rate differs from target"},
	})
	p.AddSample(voice.Sample{
		SourceRef: "b.wav",
		Valid:     false,
		Errors:    []string{"duration below minimum"},
	})

	return p
}

func TestSQLiteSaveAndFindByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := newStoredProfile(t, "narrator")
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	if got.Name != "narrator" || got.Language != "en" || got.ReferenceText != "calm reading voice" {
		t.Errorf("loaded profile = %+v", got)
	}

	if len(got.Samples) != 2 {
		t.Fatalf("len(Samples) = %d; want 2", len(got.Samples))
	}

	if got.Samples[0].SourceRef != "work/a_24000hz_mono.wav" || !got.Samples[0].Valid {
		t.Errorf("sample 0 = %+v", got.Samples[0])
	}

	if got.Samples[0].Warnings[0] != "sample rate differs from target" {
		t.Errorf("sample 0 warnings = %v", got.Samples[0].Warnings)
	}

	if got.Samples[1].Valid || got.Samples[1].Errors[0] != "duration below minimum" {
		t.Errorf("sample 1 = %+v", got.Samples[1])
	}

	if got.TotalDurationSeconds != 10.5 {
		t.Errorf("TotalDurationSeconds = %v; want 10.5 (recomputed on load)", got.TotalDurationSeconds)
	}

	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt = %v; want %v", got.CreatedAt, p.CreatedAt)
	}
}

func TestSQLiteSave_UpdatesExistingProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := newStoredProfile(t, "narrator")
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := p.RemoveSample(1); err != nil {
		t.Fatalf("RemoveSample: %v", err)
	}
	p.ReferenceText = "updated"

	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	if len(got.Samples) != 1 {
		t.Errorf("len(Samples) = %d; want 1 after update", len(got.Samples))
	}

	if got.ReferenceText != "updated" {
		t.Errorf("ReferenceText = %q", got.ReferenceText)
	}
}

func TestSQLiteSave_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := newStoredProfile(t, "narrator")
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save first: %v", err)
	}

	second := newStoredProfile(t, "narrator")
	err := s.Save(ctx, second)
	if !errors.Is(err, voice.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestSQLiteFindByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindByID(context.Background(), "missing")
	if !errors.Is(err, voice.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteListAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta"} {
		if err := s.Save(ctx, newStoredProfile(t, name)); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	profiles, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}

	if len(profiles) != 2 {
		t.Fatalf("len = %d; want 2", len(profiles))
	}

	for _, p := range profiles {
		if len(p.Samples) != 2 {
			t.Errorf("profile %q loaded with %d samples; want 2", p.Name, len(p.Samples))
		}
	}
}

func TestSQLiteDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := newStoredProfile(t, "narrator")
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.FindByID(ctx, p.ID); !errors.Is(err, voice.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.Delete(ctx, p.ID); !errors.Is(err, voice.ErrNotFound) {
		t.Errorf("deleting twice must return ErrNotFound, got %v", err)
	}
}
