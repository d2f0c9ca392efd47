package translate

import (
	"context"
	"fmt"
	"time"

	"doublage/internal/cache"
	"doublage/internal/logging"
	"doublage/internal/subtitle"
)

const (
	DefaultRetries    = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultTimeout    = 5 * time.Minute
)

// Service translates whole caption documents, consulting the translation
// cache before spending API calls. Only cache misses are sent to the
// provider; fresh results are written back so reruns are free.
type Service struct {
	translator Translator
	store      cache.Store
	opts       ServiceOptions
	log        *logging.Logger
}

type ServiceOptions struct {
	SourceLang  string
	TargetLang  string
	Concurrency int // provider batches in flight (default 1, sequential)
	Retries     int
	RetryDelay  time.Duration
	// Timeout bounds each provider attempt.
	Timeout time.Duration
}

func (o ServiceOptions) withDefaults() ServiceOptions {
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

// NewService wraps a translator with cache lookups. store may be nil to
// disable caching.
func NewService(
	translator Translator,
	store cache.Store,
	opts ServiceOptions,
	log *logging.Logger,
) (*Service, error) {
	if translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if opts.TargetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{
		translator: translator,
		store:      store,
		opts:       opts.withDefaults(),
		log:        log,
	}, nil
}

// TranslateDocument returns a new document with every segment's text
// translated. Timing and speaker assignments are preserved. Any segment the
// provider fails to translate makes the whole call fail; a dub with silently
// untranslated lines is worse than no dub.
func (s *Service) TranslateDocument(
	ctx context.Context,
	doc *subtitle.Document,
) (*subtitle.Document, error) {
	out := &subtitle.Document{
		Segments: make([]subtitle.Segment, len(doc.Segments)),
		Language: s.opts.TargetLang,
	}
	copy(out.Segments, doc.Segments)

	var misses []TranslationItem
	hits := 0
	for i, seg := range out.Segments {
		if s.store != nil {
			entry, ok, err := s.store.Get(
				seg.Text,
				s.opts.SourceLang,
				s.opts.TargetLang,
			)
			if err != nil {
				s.log.Warnw("cache lookup failed", "error", err)
			} else if ok {
				out.Segments[i].Text = entry.Translation
				hits++
				continue
			}
		}
		misses = append(misses, TranslationItem{Index: i, Text: seg.Text})
	}

	s.log.Infow("translating document",
		"segments", len(doc.Segments),
		"cached", hits,
		"to_translate", len(misses),
	)

	if len(misses) == 0 {
		return out, nil
	}

	results, err := s.translateWithRetry(ctx, misses)
	if err != nil {
		return nil, err
	}

	translated := make(map[int]string, len(results))
	for _, r := range results {
		translated[r.Index] = r.Text
	}

	for _, item := range misses {
		text, ok := translated[item.Index]
		if !ok || text == "" {
			return nil, fmt.Errorf(
				"translator returned no text for segment %d",
				item.Index+1,
			)
		}
		out.Segments[item.Index].Text = text

		if s.store != nil {
			err := s.store.Put(cache.Entry{
				Source:      item.Text,
				Translation: text,
				SourceLang:  s.opts.SourceLang,
				TargetLang:  s.opts.TargetLang,
			})
			if err != nil {
				s.log.Warnw("cache write failed", "error", err)
			}
		}
	}

	return out, nil
}

func (s *Service) translateWithRetry(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	var lastErr error
	for attempt := 0; attempt < s.opts.Retries; attempt++ {
		if attempt > 0 {
			s.log.Warnw("retrying translation",
				"attempt", attempt+1,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.opts.RetryDelay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		results, err := s.translate(attemptCtx, items)
		cancel()
		if err == nil {
			return results, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf(
		"translation failed after %d attempts: %w",
		s.opts.Retries,
		lastErr,
	)
}

func (s *Service) translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	if ct, ok := s.translator.(ConcurrentTranslator); ok &&
		s.opts.Concurrency > 1 {
		return ct.TranslateWithConcurrency(ctx, items, s.opts.Concurrency)
	}
	return s.translator.Translate(ctx, items)
}
