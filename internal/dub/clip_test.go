package dub

import (
	"math"
	"path/filepath"
	"testing"
	"time"
)

func TestWAVFileRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "clip.wav")

	// 100ms of a 440Hz tone at 16kHz
	rate := 16000
	n := rate / 10
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate))
	}
	clip := Clip{Samples: samples, SampleRate: rate}

	if err := WriteWAVFile(clip, path); err != nil {
		t.Fatalf("WriteWAVFile error: %v", err)
	}

	got, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("ReadWAVFile error: %v", err)
	}

	if got.SampleRate != rate {
		t.Errorf("sample rate = %d, want %d", got.SampleRate, rate)
	}
	if len(got.Samples) != n {
		t.Fatalf("sample count = %d, want %d", len(got.Samples), n)
	}

	// 16-bit quantization bounds the error
	for i := 0; i < n; i += 100 {
		if math.Abs(got.Samples[i]-samples[i]) > 1.0/16000 {
			t.Fatalf("sample %d = %f, want %f", i, got.Samples[i], samples[i])
		}
	}
}

func TestWriteWAVFileClampsSamples(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "hot.wav")

	clip := Clip{Samples: []float64{2.0, -2.0, 0}, SampleRate: 8000}
	if err := WriteWAVFile(clip, path); err != nil {
		t.Fatalf("WriteWAVFile error: %v", err)
	}

	got, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("ReadWAVFile error: %v", err)
	}
	if got.Samples[0] > 1.0001 || got.Samples[1] < -1.0001 {
		t.Errorf("samples not clamped: %v", got.Samples)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := DecodeWAVBytes([]byte("definitely not audio")); err == nil {
		t.Error("expected error for non-WAV payload")
	}
}

func TestClipDuration(t *testing.T) {
	clip := Clip{Samples: make([]float64, 24000), SampleRate: 24000}
	if clip.Duration() != time.Second {
		t.Errorf("duration = %v, want 1s", clip.Duration())
	}
}
