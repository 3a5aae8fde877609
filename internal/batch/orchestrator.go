// Package batch drives a synthesis engine over a parsed script against
// one voice profile. The policy is best-effort through the whole script:
// a failing segment is recorded and never aborts the batch. The single
// fail-fast condition is the precondition that the profile is usable.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/example/voiceforge/internal/script"
	"github.com/example/voiceforge/internal/voice"
)

const emptySegmentError = "empty segment"

// SynthesisEngine is the external capability that turns (profile, text)
// into generated audio bytes. Implementations may block for the duration
// of a model call; the orchestrator bounds each call with its configured
// timeout.
type SynthesisEngine interface {
	GenerateAudio(ctx context.Context, profile *voice.Profile, text string) ([]byte, error)
	SupportsProfile(profile *voice.Profile) bool
}

// Orchestrator runs batches sequentially, one segment at a time.
type Orchestrator struct {
	engine      SynthesisEngine
	outDir      string
	callTimeout time.Duration
	log         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCallTimeout bounds each engine call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// WithLogger sets the slog.Logger used for per-segment logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// NewOrchestrator returns an Orchestrator writing segment audio below
// outDir.
func NewOrchestrator(engine SynthesisEngine, outDir string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine: engine,
		outDir: outDir,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run synthesizes every segment in order and assembles the manifest.
//
// An unusable or unsupported profile halts the run before any segment is
// processed: the returned manifest has no entries and the error is the
// top-level failure. After that point errors are per-segment only; Run
// returns a complete manifest and a nil error even when every segment
// failed. Cancelling ctx stops the run early and returns the partial
// manifest collected so far together with the context's error.
func (o *Orchestrator) Run(ctx context.Context, profile *voice.Profile, segments []script.Segment) (Manifest, error) {
	manifest := Manifest{
		ProfileID:   profile.ID,
		ProfileName: profile.Name,
	}
	start := time.Now()

	if !profile.Usable() {
		return manifest, fmt.Errorf("run batch: %w", voice.ErrUnusableProfile)
	}

	if !o.engine.SupportsProfile(profile) {
		return manifest, fmt.Errorf("run batch: engine does not support profile %q", profile.ID)
	}

	ordered := make([]script.Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return manifest, fmt.Errorf("create output dir: %w", err)
	}

	for _, seg := range ordered {
		if err := ctx.Err(); err != nil {
			manifest.ElapsedSeconds = time.Since(start).Seconds()
			return manifest, err
		}

		manifest.add(o.runSegment(ctx, profile, seg))
	}

	manifest.ElapsedSeconds = time.Since(start).Seconds()

	o.log.Info("batch finished",
		"profile", profile.ID,
		"segments", len(manifest.Results),
		"successes", manifest.Successes,
		"failures", manifest.Failures,
		"elapsed_s", manifest.ElapsedSeconds)

	return manifest, nil
}

func (o *Orchestrator) runSegment(ctx context.Context, profile *voice.Profile, seg script.Segment) SegmentResult {
	if seg.Empty() {
		o.log.Warn("skipping empty segment", "index", seg.Index, "name", seg.Name)

		return SegmentResult{Segment: seg, Status: StatusFailed, Error: emptySegmentError}
	}

	callCtx := ctx
	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}

	data, err := o.engine.GenerateAudio(callCtx, profile, seg.Text)
	if err != nil {
		o.log.Warn("segment synthesis failed", "index", seg.Index, "name", seg.Name, "error", err)

		return SegmentResult{Segment: seg, Status: StatusFailed, Error: err.Error()}
	}

	outPath := filepath.Join(o.outDir, OutputName(seg))
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return SegmentResult{Segment: seg, Status: StatusFailed, Error: fmt.Sprintf("write output: %v", err)}
	}

	o.log.Info("segment synthesized", "index", seg.Index, "name", seg.Name, "output", outPath, "bytes", len(data))

	return SegmentResult{Segment: seg, Status: StatusSuccess, OutputRef: outPath}
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// OutputName derives the deterministic file name for a segment from its
// order index and sanitized marker name, so reruns are reproducible and
// collision-free.
func OutputName(seg script.Segment) string {
	name := unsafeNameRe.ReplaceAllString(seg.Name, "_")

	return fmt.Sprintf("%03d_%s.wav", seg.Index, name)
}
