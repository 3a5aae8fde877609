package voice

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidName is returned when a profile name is empty, too long,
	// or contains characters outside [A-Za-z0-9_-].
	ErrInvalidName = errors.New("invalid profile name")

	// ErrNoValidSamples is returned when profile creation ends with zero
	// valid samples.
	ErrNoValidSamples = errors.New("no valid samples")

	// ErrUnusableProfile is returned when a batch is started against a
	// profile that has no valid sample.
	ErrUnusableProfile = errors.New("profile has no valid samples")

	// ErrNotFound is returned by repositories when no profile matches.
	ErrNotFound = errors.New("profile not found")

	// ErrDuplicateName is returned by repositories when saving a profile
	// whose name is already taken by a different profile.
	ErrDuplicateName = errors.New("profile name already exists")

	// ErrSampleIndex is returned when removing a sample at an index that
	// does not exist.
	ErrSampleIndex = errors.New("sample index out of range")
)

const maxNameLength = 50

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidName reports whether name is non-empty, within the length bound,
// and restricted to letters, digits, underscore, and hyphen.
func ValidName(name string) bool {
	return name != "" && len(name) <= maxNameLength && nameRe.MatchString(name)
}

// Profile is a named aggregate of samples usable as a cloning reference.
// ID and CreatedAt are set once at construction. TotalDurationSeconds is
// derived and recomputed on every mutation; it is never set directly.
//
// Profile is not safe for concurrent mutation; callers must serialize
// AddSample/RemoveSample externally.
type Profile struct {
	ID                   string
	Name                 string
	Language             string
	ReferenceText        string
	Samples              []Sample
	CreatedAt            time.Time
	TotalDurationSeconds float64
}

// NewProfile constructs an empty profile with a fresh ID. The name must
// pass ValidName; the language is expected to come from configuration
// when the caller has no explicit value.
func NewProfile(name, language, referenceText string) (*Profile, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return &Profile{
		ID:            uuid.NewString(),
		Name:          name,
		Language:      language,
		ReferenceText: referenceText,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// AddSample appends a sample, preserving insertion order, and recomputes
// the derived duration. Invalid samples are kept so their warnings and
// errors stay visible to callers.
func (p *Profile) AddSample(s Sample) {
	p.Samples = append(p.Samples, s)
	p.recompute()
}

// RemoveSample removes the sample at index and recomputes the derived
// duration. Removing the last valid sample leaves the profile unusable
// but intact; whether to keep or discard it is the caller's decision.
func (p *Profile) RemoveSample(index int) error {
	if index < 0 || index >= len(p.Samples) {
		return fmt.Errorf("%w: %d", ErrSampleIndex, index)
	}

	p.Samples = append(p.Samples[:index], p.Samples[index+1:]...)
	p.recompute()

	return nil
}

// Usable reports whether the profile can serve as a cloning reference:
// at least one sample must be valid.
func (p *Profile) Usable() bool {
	for _, s := range p.Samples {
		if s.Valid {
			return true
		}
	}

	return false
}

// ValidSampleCount returns the number of valid samples.
func (p *Profile) ValidSampleCount() int {
	n := 0
	for _, s := range p.Samples {
		if s.Valid {
			n++
		}
	}

	return n
}

// ReferenceSample returns the first valid sample, which engines use as
// the default speaker reference. The second return value is false when
// the profile is unusable.
func (p *Profile) ReferenceSample() (Sample, bool) {
	for _, s := range p.Samples {
		if s.Valid {
			return s, true
		}
	}

	return Sample{}, false
}

func (p *Profile) recompute() {
	total := 0.0
	for _, s := range p.Samples {
		if s.Valid {
			total += s.DurationSeconds
		}
	}

	p.TotalDurationSeconds = total
}

// Repository is the persistence port for profiles. Name uniqueness is
// enforced here, not by the Profile entity itself.
type Repository interface {
	Save(ctx context.Context, p *Profile) error
	FindByID(ctx context.Context, id string) (*Profile, error)
	ListAll(ctx context.Context) ([]*Profile, error)
	Delete(ctx context.Context, id string) error
}
