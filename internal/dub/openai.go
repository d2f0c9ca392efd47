package dub

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Synthesizer using the OpenAI speech endpoint
type OpenAISynthesizer struct {
	client openai.Client
	model  string
}

func NewOpenAISynthesizer(apiKey, model string) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	if model == "" {
		model = "tts-1"
	}

	return &OpenAISynthesizer{
		client: client,
		model:  model,
	}, nil
}

func (s *OpenAISynthesizer) Synthesize(
	ctx context.Context,
	text, voice string,
) (Clip, error) {
	if text == "" {
		return Clip{}, fmt.Errorf("text is required")
	}

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return Clip{}, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	clip, err := DecodeWAVBytes(data)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to decode synthesis audio: %w", err)
	}

	return clip, nil
}
