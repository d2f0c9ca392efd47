package dub

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// mono audio buffer with float samples in [-1, 1]
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Silence returns an all-zero clip covering the given duration.
func Silence(d time.Duration, sampleRate int) Clip {
	if d < 0 {
		d = 0
	}
	n := int(math.Round(d.Seconds() * float64(sampleRate)))
	return Clip{
		Samples:    make([]float64, n),
		SampleRate: sampleRate,
	}
}

func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	seconds := float64(len(c.Samples)) / float64(c.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// Resample converts the clip to the target rate with linear
// interpolation. Synthesis engines emit whatever rate their model runs
// at; the timeline operates at one fixed rate.
func (c Clip) Resample(sampleRate int) Clip {
	if c.SampleRate == sampleRate || c.SampleRate == 0 || len(c.Samples) == 0 {
		return Clip{Samples: c.Samples, SampleRate: sampleRate}
	}

	ratio := float64(c.SampleRate) / float64(sampleRate)
	n := int(math.Round(float64(len(c.Samples)) / ratio))
	out := make([]float64, n)

	for i := range out {
		pos := float64(i) * ratio
		left := int(pos)
		if left >= len(c.Samples)-1 {
			out[i] = c.Samples[len(c.Samples)-1]
			continue
		}
		frac := pos - float64(left)
		out[i] = c.Samples[left]*(1-frac) + c.Samples[left+1]*frac
	}

	return Clip{Samples: out, SampleRate: sampleRate}
}

// DecodeWAV reads a WAV stream into a clip. Multi-channel input is
// mixed down to mono by averaging.
func DecodeWAV(r io.ReadSeeker) (Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Clip{}, fmt.Errorf("not a valid WAV stream")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("failed to decode WAV data: %w", err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return Clip{}, fmt.Errorf("empty WAV stream")
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return Clip{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// DecodeWAVBytes decodes an in-memory WAV payload, e.g. a synthesis
// engine response body.
func DecodeWAVBytes(data []byte) (Clip, error) {
	return DecodeWAV(bytes.NewReader(data))
}

// ReadWAVFile reads a WAV file into a clip.
func ReadWAVFile(path string) (Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer file.Close()

	clip, err := DecodeWAV(file)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return clip, nil
}

// WriteWAVFile writes the clip as a mono 16-bit PCM WAV file. Samples
// outside [-1, 1] are clamped.
func WriteWAVFile(clip Clip, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, clip.SampleRate, 16, 1, 1)

	data := make([]int, len(clip.Samples))
	for i, s := range clip.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(math.Round(s * 32767))
	}

	buf := &goaudio.IntBuffer{
		Data: data,
		Format: &goaudio.Format{
			SampleRate:  clip.SampleRate,
			NumChannels: 1,
		},
		SourceBitDepth: 16,
	}

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}

	return nil
}
