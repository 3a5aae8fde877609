package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/voiceforge/internal/script"
)

// Status of one segment's synthesis attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// SegmentResult records one segment's outcome. OutputRef is set only on
// success; Error only on failure.
type SegmentResult struct {
	Segment   script.Segment `json:"segment"`
	Status    Status         `json:"status"`
	OutputRef string         `json:"output_ref,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Manifest is the ordered record of per-segment outcomes for one batch
// run. Results match the script's segment order regardless of which
// entries failed.
type Manifest struct {
	ProfileID      string          `json:"profile_id"`
	ProfileName    string          `json:"profile_name"`
	Results        []SegmentResult `json:"results"`
	Successes      int             `json:"successes"`
	Failures       int             `json:"failures"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
}

func (m *Manifest) add(r SegmentResult) {
	m.Results = append(m.Results, r)
	if r.Status == StatusSuccess {
		m.Successes++
	} else {
		m.Failures++
	}
}

// WriteFile serializes the manifest as indented JSON.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
