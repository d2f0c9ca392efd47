package dub

import (
	"context"
	"fmt"
)

// interface for speech synthesis engines
type Synthesizer interface {
	// Synthesize renders text with the given voice identifier and
	// returns the audio clip at the engine's native sample rate.
	Synthesize(ctx context.Context, text, voice string) (Clip, error)
}

// optional reference audio for engines that support voice cloning
type CloneReference struct {
	AudioPath string
	Text      string
}

// speech synthesis provider
type Provider string

const (
	ProviderOpenAI  Provider = "openai"
	ProviderCommand Provider = "command"
)

// synthesis options shared across providers
type SynthOptions struct {
	Model   string
	Command string // executable for the command provider
	Clone   CloneReference
}

// creates a Synthesizer based on provider
func NewSynthesizer(provider Provider, apiKey string, opts SynthOptions) (Synthesizer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAISynthesizer(apiKey, opts.Model)
	case ProviderCommand:
		if opts.Command == "" {
			return nil, fmt.Errorf("synthesis command is required")
		}
		return NewCommandSynthesizer(opts.Command, opts.Clone)
	default:
		return nil, fmt.Errorf("unsupported synthesis provider: %s", provider)
	}
}

// Roster is an ordered list of synthesis voices for multi-speaker
// dubbing. Position 0 holds the user's chosen primary voice; diarized
// speaker ids index into the list modulo its length, so more detected
// speakers than available voices wrap around instead of failing.
type Roster struct {
	voices []string
}

func NewRoster(primary string, extras ...string) *Roster {
	voices := append([]string{primary}, extras...)
	return &Roster{voices: voices}
}

// Voice returns the roster voice for a speaker id.
func (r *Roster) Voice(speaker int) string {
	if len(r.voices) == 0 {
		return ""
	}
	if speaker < 0 {
		speaker = 0
	}
	return r.voices[speaker%len(r.voices)]
}

func (r *Roster) Len() int {
	return len(r.voices)
}
