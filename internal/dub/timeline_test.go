package dub

import (
	"math"
	"testing"
	"time"

	"doublage/internal/subtitle"
)

const testRate = 1000 // small rate keeps sample math readable

func constantClip(d time.Duration, rate int, value float64) Clip {
	n := int(math.Round(d.Seconds() * float64(rate)))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = value
	}
	return Clip{Samples: samples, SampleRate: rate}
}

func TestAssembleTotalLength(t *testing.T) {
	a := NewAssembler(testRate)
	seg := subtitle.Segment{Start: time.Second, End: 3 * time.Second}

	track := a.Assemble([]Placement{
		{Segment: seg, Clip: constantClip(2*time.Second, testRate, 0.5)},
	})

	// max end 3s + 1s trailing margin
	want := 4 * testRate
	if len(track.Samples) != want {
		t.Errorf("track length = %d samples, want %d", len(track.Samples), want)
	}
	if track.SampleRate != testRate {
		t.Errorf("track sample rate = %d, want %d", track.SampleRate, testRate)
	}
}

func TestAssembleTruncatesLongClip(t *testing.T) {
	a := NewAssembler(testRate)
	// 2 second window given a 3 second rendered clip
	seg := subtitle.Segment{Start: 0, End: 2 * time.Second}
	next := subtitle.Segment{Start: 2 * time.Second, End: 4 * time.Second}

	track := a.Assemble([]Placement{
		{Segment: seg, Clip: constantClip(3*time.Second, testRate, 0.5)},
		{Segment: next, Clip: Silence(2*time.Second, testRate)},
	})

	// exactly 2s of samples placed; nothing bleeds into the next window
	for i := 2 * testRate; i < 4*testRate; i++ {
		if track.Samples[i] != 0 {
			t.Fatalf("sample %d = %f, clip overran its window", i, track.Samples[i])
		}
	}
	if track.Samples[2*testRate-1] == 0 {
		t.Errorf("window end should carry audio")
	}
}

func TestAssemblePadsShortClip(t *testing.T) {
	a := NewAssembler(testRate)
	seg := subtitle.Segment{Start: 0, End: 2 * time.Second}

	track := a.Assemble([]Placement{
		{Segment: seg, Clip: constantClip(time.Second, testRate, 0.5)},
	})

	if track.Samples[0] == 0 {
		t.Errorf("start of clip missing")
	}
	// second half of the window is padded silence
	for i := testRate; i < 2*testRate; i++ {
		if track.Samples[i] != 0 {
			t.Fatalf("sample %d = %f, want padded silence", i, track.Samples[i])
		}
	}
}

func TestAssembleAdditiveOverlap(t *testing.T) {
	a := NewAssembler(testRate)
	a.PeakTarget = 1.0

	// two segments sharing the same window mix additively
	seg := subtitle.Segment{Start: 0, End: time.Second}
	track := a.Assemble([]Placement{
		{Segment: seg, Clip: constantClip(time.Second, testRate, 0.25)},
		{Segment: seg, Clip: constantClip(time.Second, testRate, 0.25)},
	})

	// 0.25 + 0.25 summed then normalized to peak 1.0
	if got := track.Samples[0]; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("overlapping samples = %f, want summed and normalized to 1.0", got)
	}
}

func TestAssembleOverlapTolerance(t *testing.T) {
	a := NewAssembler(testRate)
	a.OverlapTolerance = 500 * time.Millisecond
	a.PeakTarget = 1.0

	seg := subtitle.Segment{Start: 0, End: 2 * time.Second}
	track := a.Assemble([]Placement{
		{Segment: seg, Clip: constantClip(3*time.Second, testRate, 0.5)},
	})

	// clip may spill half a second past its window, no further
	if track.Samples[2*testRate] == 0 {
		t.Errorf("tolerance region should carry audio")
	}
	for i := int(2.5 * testRate); i < len(track.Samples); i++ {
		if track.Samples[i] != 0 {
			t.Fatalf("sample %d past tolerance is not silent", i)
		}
	}
}

func TestAssembleGrowsBufferOnOverrun(t *testing.T) {
	a := NewAssembler(testRate)
	a.TrailingMargin = 0
	a.OverlapTolerance = 2 * time.Second

	// rendered audio allowed past the final window must grow the
	// buffer, never be dropped
	seg := subtitle.Segment{Start: 0, End: time.Second}
	track := a.Assemble([]Placement{
		{Segment: seg, Clip: constantClip(3*time.Second, testRate, 0.5)},
	})

	if len(track.Samples) != 3*testRate {
		t.Errorf("buffer not grown: %d samples, want %d", len(track.Samples), 3*testRate)
	}
	if track.Samples[len(track.Samples)-1] == 0 {
		t.Errorf("grown region lost audio")
	}
}

func TestAssemblePeakNormalization(t *testing.T) {
	a := NewAssembler(testRate)
	seg := subtitle.Segment{Start: 0, End: time.Second}

	track := a.Assemble([]Placement{
		{Segment: seg, Clip: constantClip(time.Second, testRate, 2.0)},
	})

	var peak float64
	for _, s := range track.Samples {
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	if math.Abs(peak-DefaultPeakTarget) > 1e-9 {
		t.Errorf("peak = %f, want %f", peak, DefaultPeakTarget)
	}
}

func TestAssembleSilentInputStaysSilent(t *testing.T) {
	a := NewAssembler(testRate)
	seg := subtitle.Segment{Start: 0, End: time.Second}

	track := a.Assemble([]Placement{
		{Segment: seg, Clip: Silence(time.Second, testRate)},
	})

	for i, s := range track.Samples {
		if s != 0 {
			t.Fatalf("sample %d = %f in silent track", i, s)
		}
	}
}

func TestAssembleResamplesClips(t *testing.T) {
	a := NewAssembler(testRate)
	seg := subtitle.Segment{Start: 0, End: time.Second}

	// clip rendered at twice the timeline rate
	track := a.Assemble([]Placement{
		{Segment: seg, Clip: constantClip(time.Second, 2*testRate, 0.5)},
	})

	if track.Samples[testRate/2] == 0 {
		t.Errorf("resampled clip missing from timeline")
	}
}

func TestMixBackgroundGains(t *testing.T) {
	voice := constantClip(time.Second, testRate, 0.4)
	background := constantClip(2*time.Second, testRate, 0.1)

	mixed := MixBackground(voice, background)

	if len(mixed.Samples) != 2*testRate {
		t.Fatalf("mixed length = %d, want background length", len(mixed.Samples))
	}

	wantOverlap := 0.4*VoiceGain + 0.1*BackgroundGain
	if got := mixed.Samples[0]; math.Abs(got-wantOverlap) > 1e-9 {
		t.Errorf("overlap sample = %f, want %f", got, wantOverlap)
	}

	wantTail := 0.1 * BackgroundGain
	if got := mixed.Samples[len(mixed.Samples)-1]; math.Abs(got-wantTail) > 1e-9 {
		t.Errorf("tail sample = %f, want %f", got, wantTail)
	}
}

func TestClipResample(t *testing.T) {
	clip := constantClip(time.Second, 48000, 0.5)
	out := clip.Resample(16000)

	if out.SampleRate != 16000 {
		t.Errorf("resampled rate = %d", out.SampleRate)
	}
	if got, want := len(out.Samples), 16000; got != want {
		t.Errorf("resampled length = %d, want %d", got, want)
	}
	if math.Abs(out.Samples[8000]-0.5) > 1e-9 {
		t.Errorf("resampled value = %f", out.Samples[8000])
	}
}

func TestSilenceDuration(t *testing.T) {
	clip := Silence(1500*time.Millisecond, testRate)
	if len(clip.Samples) != 1500 {
		t.Errorf("silence length = %d samples, want 1500", len(clip.Samples))
	}
	if clip.Duration() != 1500*time.Millisecond {
		t.Errorf("silence duration = %v", clip.Duration())
	}
}
