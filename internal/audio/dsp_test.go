package audio

import (
	"math"
	"testing"
)

func TestPeak(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    float64
	}{
		{"empty", nil, 0},
		{"positive peak", []float32{0.1, 0.5, 0.3}, 0.5},
		{"negative peak wins", []float32{0.1, -0.9, 0.3}, 0.9},
		{"full scale", []float32{1.0, -1.0}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Peak(tt.samples)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Peak = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestDownmixMono(t *testing.T) {
	t.Run("mono passes through", func(t *testing.T) {
		in := []float32{0.1, 0.2, 0.3}

		got := DownmixMono(in, 1)
		if len(got) != 3 || got[0] != 0.1 {
			t.Errorf("unexpected output: %v", got)
		}
	})

	t.Run("stereo averages channel pairs", func(t *testing.T) {
		in := []float32{0.2, 0.4, -0.2, -0.4}

		got := DownmixMono(in, 2)
		if len(got) != 2 {
			t.Fatalf("len = %d; want 2", len(got))
		}

		if math.Abs(float64(got[0])-0.3) > 1e-6 {
			t.Errorf("frame 0 = %v; want 0.3", got[0])
		}

		if math.Abs(float64(got[1])+0.3) > 1e-6 {
			t.Errorf("frame 1 = %v; want -0.3", got[1])
		}
	})
}

func TestResample(t *testing.T) {
	t.Run("same rate passes through", func(t *testing.T) {
		in := []float32{0.1, 0.2}
		got := Resample(in, 24000, 24000)
		if len(got) != 2 {
			t.Errorf("len = %d; want 2", len(got))
		}
	})

	t.Run("halving the rate halves the length", func(t *testing.T) {
		in := make([]float32, 48000)
		got := Resample(in, 48000, 24000)
		if len(got) != 24000 {
			t.Errorf("len = %d; want 24000", len(got))
		}
	})

	t.Run("doubling the rate doubles the length", func(t *testing.T) {
		in := make([]float32, 12000)
		got := Resample(in, 12000, 24000)
		if len(got) != 24000 {
			t.Errorf("len = %d; want 24000", len(got))
		}
	})

	t.Run("constant signal survives interpolation", func(t *testing.T) {
		in := make([]float32, 4410)
		for i := range in {
			in[i] = 0.5
		}

		got := Resample(in, 44100, 24000)
		for i, s := range got {
			if math.Abs(float64(s)-0.5) > 1e-4 {
				t.Fatalf("sample %d = %v; want 0.5", i, s)
			}
		}
	})
}
