package voice

// Metadata describes one decoded audio stream. It is what the validator
// judges and what a Sample carries alongside its verdict.
type Metadata struct {
	DurationSeconds float64
	SampleRateHz    int
	ChannelCount    int
	BitDepth        int
	PeakAmplitude   float64
}

// Sample is an immutable record of one audio input plus the validity
// verdict produced from its metadata. Construct a new value instead of
// mutating an existing one.
type Sample struct {
	SourceRef       string
	DurationSeconds float64
	SampleRateHz    int
	ChannelCount    int
	BitDepth        int
	Valid           bool
	Errors          []string
	Warnings        []string
}

// NewSample builds a Sample from the metadata that produced the given
// validation result. The slices are copied so later mutation of the
// result cannot alter the sample.
func NewSample(sourceRef string, meta Metadata, result ValidationResult) Sample {
	return Sample{
		SourceRef:       sourceRef,
		DurationSeconds: meta.DurationSeconds,
		SampleRateHz:    meta.SampleRateHz,
		ChannelCount:    meta.ChannelCount,
		BitDepth:        meta.BitDepth,
		Valid:           result.Valid,
		Errors:          append([]string(nil), result.Errors...),
		Warnings:        append([]string(nil), result.Warnings...),
	}
}

// RejectedSample builds a Sample for a source that could not be decoded
// at all. No metadata is available in that case.
func RejectedSample(sourceRef string, reason string) Sample {
	return Sample{
		SourceRef: sourceRef,
		Valid:     false,
		Errors:    []string{reason},
	}
}
