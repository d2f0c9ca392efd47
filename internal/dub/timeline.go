package dub

import (
	"math"
	"time"

	"doublage/internal/subtitle"
)

// default composited track parameters
const (
	DefaultSampleRate     = 24000
	DefaultTrailingMargin = time.Second
	DefaultPeakTarget     = 0.9

	// relative gains for blending the dubbed voice over separated
	// background music
	VoiceGain      = 1.5
	BackgroundGain = 0.8
)

// a rendered clip bound to its originating segment's timing window
type Placement struct {
	Segment subtitle.Segment
	Clip    Clip
}

// Assembler composites rendered speech clips onto one continuous track
// honoring absolute subtitle start times. Synthesized speech rarely
// matches the subtitle window exactly, so clips are truncated or padded
// to their window and summed into the buffer, letting adjacent segments
// overlap smoothly instead of clicking.
type Assembler struct {
	SampleRate     int
	TrailingMargin time.Duration
	PeakTarget     float64
	// OverlapTolerance lets an overlong clip spill past its window by a
	// bounded amount before truncation, trading strict slot boundaries
	// for a softer cut. Zero truncates exactly at the window.
	OverlapTolerance time.Duration
}

func NewAssembler(sampleRate int) *Assembler {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Assembler{
		SampleRate:     sampleRate,
		TrailingMargin: DefaultTrailingMargin,
		PeakTarget:     DefaultPeakTarget,
	}
}

// Assemble places every clip at its segment's start offset and returns
// the peak-normalized composite track.
func (a *Assembler) Assemble(placements []Placement) Clip {
	var maxEnd time.Duration
	for _, p := range placements {
		if p.Segment.End > maxEnd {
			maxEnd = p.Segment.End
		}
	}

	total := a.samplesFor(maxEnd + a.TrailingMargin)
	buffer := make([]float64, total)

	for _, p := range placements {
		clip := p.Clip.Resample(a.SampleRate)
		samples := clip.Samples

		// fit the clip to the subtitle window: truncate overruns rather
		// than shifting later segments, pad shortfalls with silence
		available := a.samplesFor(p.Segment.End - p.Segment.Start)
		if available < 0 {
			available = 0
		}
		limit := available + a.samplesFor(a.OverlapTolerance)
		if len(samples) > limit {
			samples = samples[:limit]
		}
		if len(samples) < available {
			padded := make([]float64, available)
			copy(padded, samples)
			samples = padded
		}

		start := a.samplesFor(p.Segment.Start)
		if start < 0 {
			start = 0
		}

		// grow rather than drop samples on overrun
		if start+len(samples) > len(buffer) {
			grown := make([]float64, start+len(samples))
			copy(grown, buffer)
			buffer = grown
		}

		// additive compositing tolerates slight overlap between segments
		for i, s := range samples {
			buffer[start+i] += s
		}
	}

	normalizePeak(buffer, a.PeakTarget)

	return Clip{Samples: buffer, SampleRate: a.SampleRate}
}

// MixBackground blends separated background music under the dubbed
// voice track at fixed relative gains. Applied after normalization, so
// the sum can exceed full scale; WAV encoding clamps it.
func MixBackground(voice, background Clip) Clip {
	bg := background.Resample(voice.SampleRate)

	n := len(voice.Samples)
	if len(bg.Samples) > n {
		n = len(bg.Samples)
	}

	out := make([]float64, n)
	for i := range out {
		var v, b float64
		if i < len(voice.Samples) {
			v = voice.Samples[i]
		}
		if i < len(bg.Samples) {
			b = bg.Samples[i]
		}
		out[i] = v*VoiceGain + b*BackgroundGain
	}

	return Clip{Samples: out, SampleRate: voice.SampleRate}
}

func (a *Assembler) samplesFor(d time.Duration) int {
	return int(math.Round(d.Seconds() * float64(a.SampleRate)))
}

// normalizePeak scales the buffer so its absolute peak sits at target,
// preserving relative dynamics. A silent buffer is left untouched.
func normalizePeak(buffer []float64, target float64) {
	var peak float64
	for _, s := range buffer {
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	if peak == 0 {
		return
	}

	scale := target / peak
	for i := range buffer {
		buffer[i] *= scale
	}
}
