package voice

import "fmt"

// Validation messages. The exact strings are part of the contract:
// callers and manifests surface them verbatim.
const (
	msgDurationBelowMin = "duration below minimum"
	msgDurationAboveMax = "duration above maximum"
	msgRateDiffers      = "sample rate differs from target"
	msgMultiChannel     = "multi-channel input will be downmixed to mono"
	msgClipping         = "peak amplitude exceeds clipping threshold"
)

// Policy holds the fixed acceptance thresholds a sample is judged
// against. A Policy value is immutable; build a new one to change it.
type Policy struct {
	TargetSampleRateHz int
	MinDurationSeconds float64
	MaxDurationSeconds float64
	ClipThreshold      float64
}

// DefaultPolicy matches the synthesis pipeline's expectations:
// 24 kHz mono reference audio between 3 and 30 seconds.
func DefaultPolicy() Policy {
	return Policy{
		TargetSampleRateHz: 24000,
		MinDurationSeconds: 3.0,
		MaxDurationSeconds: 30.0,
		ClipThreshold:      0.99,
	}
}

// ValidationResult is the verdict for one sample's metadata. Errors are
// fatal to the sample; warnings are informational and the sample stays
// usable.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validate judges metadata against the policy. It is pure: the same
// metadata always yields the same result, and no I/O happens here.
// Decode failures never reach this function; they are reported by the
// acceptance adapter before metadata exists.
func (p Policy) Validate(meta Metadata) ValidationResult {
	var result ValidationResult

	if meta.DurationSeconds < p.MinDurationSeconds {
		result.Errors = append(result.Errors, msgDurationBelowMin)
	} else if meta.DurationSeconds > p.MaxDurationSeconds {
		result.Errors = append(result.Errors, msgDurationAboveMax)
	}

	if meta.SampleRateHz != p.TargetSampleRateHz {
		result.Warnings = append(result.Warnings, msgRateDiffers)
	}

	if meta.ChannelCount > 1 {
		result.Warnings = append(result.Warnings, msgMultiChannel)
	}

	if meta.PeakAmplitude > p.ClipThreshold {
		result.Warnings = append(result.Warnings, msgClipping)
	}

	result.Valid = len(result.Errors) == 0

	return result
}

// String renders a compact human-readable summary, used in logs.
func (r ValidationResult) String() string {
	return fmt.Sprintf("valid=%t errors=%d warnings=%d", r.Valid, len(r.Errors), len(r.Warnings))
}
