package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
)

// ErrInvalidWAV is returned when input bytes are not a decodable WAV file.
var ErrInvalidWAV = errors.New("invalid WAV file")

// Info describes a decoded stream.
type Info struct {
	SampleRateHz    int
	ChannelCount    int
	BitDepth        int
	DurationSeconds float64
	PeakAmplitude   float64
}

// DecodeWAV decodes WAV bytes into interleaved float32 PCM samples plus
// stream info. Unlike the synthesis output path, reference samples may
// arrive in any rate/channel/bit-depth combination, so no format is
// rejected here; policy checks happen in the validator.
func DecodeWAV(data []byte) ([]float32, Info, error) {
	if len(data) == 0 {
		return nil, Info{}, fmt.Errorf("%w: empty input", ErrInvalidWAV)
	}

	r := bytes.NewReader(data)
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, Info{}, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, Info{}, fmt.Errorf("reading PCM data: %w", err)
	}

	info := Info{
		SampleRateHz: int(dec.SampleRate),
		ChannelCount: int(dec.NumChans),
		BitDepth:     int(dec.BitDepth),
	}

	if info.SampleRateHz <= 0 || info.ChannelCount <= 0 {
		return nil, Info{}, fmt.Errorf("%w: rate %d, channels %d", ErrInvalidWAV, info.SampleRateHz, info.ChannelCount)
	}

	frames := len(buf.Data) / info.ChannelCount
	info.DurationSeconds = float64(frames) / float64(info.SampleRateHz)
	info.PeakAmplitude = Peak(buf.Data)

	return buf.Data, info, nil
}

// DecodeFile reads and decodes a WAV file from disk.
func DecodeFile(path string) ([]float32, Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("read %s: %w", path, err)
	}

	return DecodeWAV(data)
}
