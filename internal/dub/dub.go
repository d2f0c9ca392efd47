package dub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"doublage/internal/logging"
	"doublage/internal/subtitle"
)

const (
	DefaultConcurrency = 5
	DefaultRetries     = 3
	DefaultRetryDelay  = 2 * time.Second
	DefaultTimeout     = 2 * time.Minute
)

// dubbing configuration passed in explicitly by the caller
type Options struct {
	// Voice is the primary synthesis voice, roster position 0.
	Voice string
	// ExtraVoices extend the roster for diarized multi-speaker dubbing.
	ExtraVoices []string
	// EnableDiarization selects voices by segment speaker id; disabled,
	// every segment uses the primary voice.
	EnableDiarization bool

	SampleRate  int
	Concurrency int
	Retries     int
	RetryDelay  time.Duration
	// Timeout bounds each synthesis attempt, so one hung engine call
	// fails that attempt instead of stalling the job.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// result of rendering one document onto a timeline
type Result struct {
	Track Clip
	// FailedSegments counts segments whose synthesis failed after
	// retries and were substituted with silence.
	FailedSegments int
}

// Dubber renders a subtitle document into one dubbed audio track.
type Dubber struct {
	synth  Synthesizer
	opts   Options
	logger *logging.Logger
}

func NewDubber(synth Synthesizer, opts Options, logger *logging.Logger) *Dubber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dubber{
		synth:  synth,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Render synthesizes every segment concurrently under a bounded worker
// pool, then assembles the clips sequentially in segment order. Render
// completions arrive out of order; clips are re-associated with their
// segment by index, never by completion order. A segment that fails all
// retries degrades to silence over its window and is counted, not
// fatal. A document with no segments is reported as an error since
// there is nothing to dub.
func (d *Dubber) Render(ctx context.Context, doc *subtitle.Document) (*Result, error) {
	if len(doc.Segments) == 0 {
		return nil, fmt.Errorf("no usable captions to dub")
	}

	roster := NewRoster(d.opts.Voice, d.opts.ExtraVoices...)

	clips := make([]Clip, len(doc.Segments))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)

	sem := make(chan struct{}, d.opts.Concurrency)

	for i, seg := range doc.Segments {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		wg.Add(1)
		go func(i int, seg subtitle.Segment) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			voice := d.opts.Voice
			if d.opts.EnableDiarization {
				voice = roster.Voice(seg.Speaker)
			}

			clip, err := d.renderSegment(ctx, seg, voice)
			if err != nil {
				d.logger.Warnw("segment synthesis failed, substituting silence",
					"segment", i+1,
					"error", err,
				)
				clip = Silence(seg.Duration(), d.opts.SampleRate)
				mu.Lock()
				failed++
				mu.Unlock()
			}

			clips[i] = clip
		}(i, seg)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	placements := make([]Placement, len(doc.Segments))
	for i, seg := range doc.Segments {
		placements[i] = Placement{Segment: seg, Clip: clips[i]}
	}

	assembler := NewAssembler(d.opts.SampleRate)
	track := assembler.Assemble(placements)

	if failed > 0 {
		d.logger.Warnw("dubbing completed with degraded segments",
			"failed", failed,
			"total", len(doc.Segments),
		)
	}

	return &Result{Track: track, FailedSegments: failed}, nil
}

// renderSegment synthesizes one segment with bounded retries.
func (d *Dubber) renderSegment(
	ctx context.Context,
	seg subtitle.Segment,
	voice string,
) (Clip, error) {
	text := seg.SpokenText()
	if text == "" {
		return Silence(seg.Duration(), d.opts.SampleRate), nil
	}

	var lastErr error
	for attempt := 0; attempt < d.opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Clip{}, ctx.Err()
			case <-time.After(d.opts.RetryDelay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
		clip, err := d.synth.Synthesize(attemptCtx, text, voice)
		cancel()
		if err == nil {
			return clip, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return Clip{}, ctx.Err()
		}
	}

	return Clip{}, fmt.Errorf("synthesis failed after %d attempts: %w",
		d.opts.Retries, lastErr)
}
