package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doublage/internal/audio"
	"doublage/internal/media"
	"doublage/internal/subtitle"
	"doublage/internal/transcribe"

	"github.com/spf13/cobra"
)

var subtitlesCmd = &cobra.Command{
	Use:   "subtitles [media_file]",
	Short: "Generate subtitles for an audio or video file",
	Long: `Generate subtitles for the specified audio or video file using AI transcription.

The command accepts both audio files (mp3, wav, aac, etc.) and video files (mp4, mkv, etc.).
For video files, audio is automatically extracted before transcription.

The audio is split into chunks (default 1 minute) and transcribed in parallel.
Generated subtitles can be output in SRT, VTT, or ASS format.

Examples:
  doublage subtitles video.mp4
  doublage subtitles audio.mp3 --format vtt
  doublage subtitles video.mp4 --api-key YOUR_KEY --chunk-duration 2
  doublage subtitles podcast.mp3 -f srt -d 1 --concurrency 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSubtitles,
}

func init() {
	rootCmd.AddCommand(subtitlesCmd)

	subtitlesCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY env var)")
	subtitlesCmd.Flags().
		String("provider", "gemini", "Transcription provider (gemini, openai)")
	subtitlesCmd.Flags().
		IntP("chunk-duration", "d", 1, "Chunk duration in minutes for splitting audio")
	subtitlesCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	subtitlesCmd.Flags().
		Int("concurrency", 3, "Number of parallel transcription workers")
	subtitlesCmd.Flags().
		String("model", "", "Model to use for transcription (provider default if empty)")
	subtitlesCmd.Flags().
		String("transcript-language", "native", "Output language for transcript ('native' keeps the original)")
}

func runSubtitles(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	providerStr, _ := cmd.Flags().GetString("provider")
	chunkDuration, _ := cmd.Flags().GetInt("chunk-duration")
	formatStr, _ := cmd.Flags().GetString("format")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	model, _ := cmd.Flags().GetString("model")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")
	transcriptLang, _ := cmd.Flags().GetString("transcript-language")

	provider := transcribe.Provider(providerStr)
	apiKey, err := resolveAPIKey(apiKey, string(provider))
	if err != nil {
		return err
	}

	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outputPath = baseName + subtitle.GetExtensionForFormat(format)
	}

	logger.Infow("Starting subtitle generation",
		"input", mediaPath,
		"output", outputPath,
		"format", formatStr,
		"chunk_duration", chunkDuration,
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "doublage-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath, err := prepareCompressedAudio(ctx, mediaPath, tempDir)
	if err != nil {
		return err
	}

	duration, err := audio.GetDuration(audioPath)
	if err != nil {
		return fmt.Errorf("failed to get audio duration: %w", err)
	}

	doc, err := transcribeDocument(ctx, transcribeParams{
		audioPath:      audioPath,
		tempDir:        tempDir,
		provider:       provider,
		apiKey:         apiKey,
		model:          model,
		language:       language,
		transcriptLang: transcriptLang,
		chunkMinutes:   chunkDuration,
		concurrency:    concurrency,
	})
	if err != nil {
		return err
	}
	doc.Language = language

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}

	if err := writer.Write(doc, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles generated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(doc.Segments))
	fmt.Printf("  Duration: %s\n", duration.String())

	return nil
}

// transcodes the input to a small mono track the transcription APIs accept,
// extracting the audio stream first for video inputs
func prepareCompressedAudio(
	ctx context.Context,
	mediaPath, tempDir string,
) (string, error) {
	audioPath := filepath.Join(tempDir, "audio.mp3")
	compressionOpts := audio.DefaultCompressionOptions()

	if audio.IsVideoFile(mediaPath) {
		logger.Infow("Extracting audio from video")
		extractOpts := media.ExtractAudioOptions{
			Format:     compressionOpts.Format,
			SampleRate: compressionOpts.SampleRate,
			Channels:   compressionOpts.Channels,
			Bitrate:    compressionOpts.Bitrate,
		}
		if err := media.ExtractAudio(ctx, mediaPath, audioPath, extractOpts); err != nil {
			return "", fmt.Errorf("failed to extract audio: %w", err)
		}
		return audioPath, nil
	}

	logger.Infow("Compressing audio for transcription")
	if err := audio.CompressAudio(ctx, mediaPath, audioPath, compressionOpts); err != nil {
		return "", fmt.Errorf("failed to compress audio: %w", err)
	}
	return audioPath, nil
}

type transcribeParams struct {
	audioPath      string
	tempDir        string
	provider       transcribe.Provider
	apiKey         string
	model          string
	language       string
	transcriptLang string
	chunkMinutes   int
	concurrency    int
}

func transcribeDocument(
	ctx context.Context,
	p transcribeParams,
) (*subtitle.Document, error) {
	chunkDir := filepath.Join(p.tempDir, "chunks")
	chunkDur := time.Duration(p.chunkMinutes) * time.Minute

	logger.Infow("Splitting audio into chunks",
		"chunk_duration", chunkDur.String(),
	)

	chunks, err := audio.ChunkAudio(ctx, p.audioPath, chunkDur, chunkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}

	logger.Infow("Created audio chunks", "count", len(chunks))

	transcribeOpts := transcribe.Options{
		Language:           p.language,
		TranscriptLanguage: p.transcriptLang,
		Model:              p.model,
	}

	transcriber, err := transcribe.Factory(ctx, p.provider, p.apiKey, transcribeOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	logger.Infow("Transcribing audio", "concurrency", p.concurrency)

	var result *transcribe.Result
	if ct, ok := transcriber.(transcribe.ConcurrentTranscriber); ok {
		result, err = ct.TranscribeWithChunks(ctx, chunks, p.concurrency)
	} else {
		result, err = transcriber.Transcribe(ctx, p.audioPath)
	}
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("Transcription complete", "segments", len(result.Segments))

	return subtitle.NewGenerator().Generate(result.Segments), nil
}

func parseFormat(formatStr string) (subtitle.Format, error) {
	switch strings.ToLower(formatStr) {
	case "srt":
		return subtitle.FormatSRT, nil
	case "vtt":
		return subtitle.FormatVTT, nil
	case "ass":
		return subtitle.FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", formatStr)
	}
}

// flag value first, then the provider's conventional env var
func resolveAPIKey(flagValue, provider string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	var envVar string
	switch provider {
	case "gemini":
		envVar = "GEMINI_API_KEY"
	case "openai":
		envVar = "OPENAI_API_KEY"
	case "anthropic":
		envVar = "ANTHROPIC_API_KEY"
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"API key is required: use --api-key flag or set %s environment variable",
		envVar,
	)
}
