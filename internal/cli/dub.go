package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"doublage/internal/audio"
	"doublage/internal/diarize"
	"doublage/internal/dub"
	"doublage/internal/media"
	"doublage/internal/subtitle"
	"doublage/internal/transcribe"
	"doublage/internal/translate"

	"github.com/spf13/cobra"
)

var dubCmd = &cobra.Command{
	Use:   "dub [media_file]",
	Short: "Dub a video or audio file into another language",
	Long: `Run the full dubbing pipeline: transcribe (or load existing subtitles),
optionally diarize speakers, translate, synthesize a dubbed audio track,
and remux it into the original video.

Per-segment synthesis failures degrade to silence so one bad line never
sinks the whole dub; the failure count is reported at the end.

Examples:
  doublage dub video.mp4 -t fr
  doublage dub video.mp4 -t ja --subtitles video.srt --voice nova
  doublage dub video.mp4 -t es --diarize --extra-voices onyx,shimmer
  doublage dub video.mp4 -t fr --keep-background --hardcode`,
	Args: cobra.ExactArgs(1),
	RunE: runDub,
}

func init() {
	rootCmd.AddCommand(dubCmd)

	dubCmd.Flags().
		StringP("target-language", "t", "", "Target language for the dub (required)")
	dubCmd.Flags().
		String("subtitles", "", "Existing SRT file to dub (skips transcription)")
	dubCmd.Flags().
		Bool("no-translate", false, "Dub the transcript without translating it")

	dubCmd.Flags().
		String("stt-provider", "openai", "Transcription provider (openai, gemini)")
	dubCmd.Flags().
		String("stt-model", "", "Transcription model (provider default if empty)")
	dubCmd.Flags().
		IntP("chunk-duration", "d", 1, "Chunk duration in minutes for transcription")

	dubCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	dubCmd.Flags().
		String("model", "", "Translation model (provider default if empty)")
	dubCmd.Flags().
		Int("batch-size", 50, "Subtitle entries per translation request")

	dubCmd.Flags().
		String("tts-provider", "openai", "Speech synthesis provider (openai, command)")
	dubCmd.Flags().
		String("tts-model", "", "Speech synthesis model (provider default if empty)")
	dubCmd.Flags().
		String("tts-command", "", "External synthesis executable for the command provider")
	dubCmd.Flags().
		String("voice", "alloy", "Primary synthesis voice")
	dubCmd.Flags().
		StringSlice("extra-voices", nil, "Additional voices for diarized speakers")
	dubCmd.Flags().
		String("ref-audio", "", "Reference audio for voice cloning (command provider)")
	dubCmd.Flags().
		String("ref-text", "", "Transcript of the reference audio")

	dubCmd.Flags().
		Bool("diarize", false, "Assign speakers via an external diarization command")
	dubCmd.Flags().
		String("diarizer", "diarize", "Diarization executable")
	dubCmd.Flags().
		Int("speakers", 0, "Expected speaker count hint for diarization (0 = auto)")

	dubCmd.Flags().
		Bool("keep-background", false, "Separate and keep the original background music")
	dubCmd.Flags().
		String("separator", "demucs", "Source separation executable")
	dubCmd.Flags().
		Bool("hardcode", false, "Burn subtitles into the video instead of a soft track")
	dubCmd.Flags().
		Int("concurrency", dub.DefaultConcurrency, "Parallel synthesis calls")
	dubCmd.Flags().
		Int("sample-rate", dub.DefaultSampleRate, "Output track sample rate in Hz")
	dubCmd.Flags().
		StringP("api-key", "k", "", "API key override for all providers")
	addCacheFlags(dubCmd)

	_ = dubCmd.MarkFlagRequired("target-language")
}

func runDub(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	targetLang, _ := cmd.Flags().GetString("target-language")
	subtitlePath, _ := cmd.Flags().GetString("subtitles")
	noTranslate, _ := cmd.Flags().GetBool("no-translate")
	outputPath, _ := cmd.Flags().GetString("output")
	sourceLang, _ := cmd.Flags().GetString("language")
	keyOverride, _ := cmd.Flags().GetString("api-key")

	isVideo := audio.IsVideoFile(mediaPath)
	if outputPath == "" {
		baseName := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		if isVideo {
			outputPath = fmt.Sprintf("%s.%s.dubbed.mp4", baseName, targetLang)
		} else {
			outputPath = fmt.Sprintf("%s.%s.dubbed.wav", baseName, targetLang)
		}
	}

	logger.Infow("Starting dub",
		"input", mediaPath,
		"output", outputPath,
		"target_language", targetLang,
	)

	tempDir, err := os.MkdirTemp("", "doublage-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	doc, err := dubSourceDocument(ctx, cmd, mediaPath, subtitlePath, tempDir, keyOverride)
	if err != nil {
		return err
	}
	if len(doc.Segments) == 0 {
		return fmt.Errorf("no usable captions to dub")
	}

	if enabled, _ := cmd.Flags().GetBool("diarize"); enabled {
		doc = diarizeDocument(ctx, cmd, mediaPath, tempDir, doc)
	}

	if !noTranslate {
		doc, err = translateForDub(ctx, cmd, doc, sourceLang, targetLang, keyOverride)
		if err != nil {
			return err
		}
	}

	result, err := renderDubTrack(ctx, cmd, doc, keyOverride)
	if err != nil {
		return err
	}

	dubWav := filepath.Join(tempDir, "dub.wav")
	if err := dub.WriteWAVFile(result.Track, dubWav); err != nil {
		return fmt.Errorf("failed to write dubbed track: %w", err)
	}

	var bgPath string
	if keep, _ := cmd.Flags().GetBool("keep-background"); keep {
		bgPath = separateBackground(ctx, cmd, mediaPath, tempDir)
	}

	if isVideo {
		subsPath := filepath.Join(tempDir, "subs.srt")
		err := subtitle.WriteSRTFile(doc, subsPath, subtitle.SerializeOptions{})
		if err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}

		hardcode, _ := cmd.Flags().GetBool("hardcode")
		logger.Infow("Muxing output", "background", bgPath != "")
		err = media.Mux(ctx, mediaPath, outputPath, media.MuxOptions{
			SubtitlePath:    subsPath,
			DubbedAudioPath: dubWav,
			BackgroundPath:  bgPath,
			TargetLang:      targetLang,
			Hardcode:        hardcode,
		})
		if err != nil {
			return err
		}
	} else {
		track := result.Track
		if bgPath != "" {
			bg, err := dub.ReadWAVFile(bgPath)
			if err != nil {
				return fmt.Errorf("failed to read background track: %w", err)
			}
			track = dub.MixBackground(track, bg)
		}
		if err := dub.WriteWAVFile(track, outputPath); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Dub complete: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", len(doc.Segments))
	fmt.Printf("  Track duration: %s\n", result.Track.Duration().String())
	if result.FailedSegments > 0 {
		fmt.Printf("  Segments degraded to silence: %d\n", result.FailedSegments)
	}

	return nil
}

// loads the given SRT, or transcribes the media when none is supplied
func dubSourceDocument(
	ctx context.Context,
	cmd *cobra.Command,
	mediaPath, subtitlePath, tempDir, keyOverride string,
) (*subtitle.Document, error) {
	if subtitlePath != "" {
		if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("subtitle file not found: %s", subtitlePath)
		}
		doc, err := subtitle.ParseSRTFile(subtitlePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse subtitle file: %w", err)
		}
		logger.Infow("Loaded subtitles",
			"path", subtitlePath,
			"entries", len(doc.Segments),
		)
		return doc, nil
	}

	providerStr, _ := cmd.Flags().GetString("stt-provider")
	model, _ := cmd.Flags().GetString("stt-model")
	chunkDuration, _ := cmd.Flags().GetInt("chunk-duration")
	language, _ := cmd.Flags().GetString("language")

	apiKey, err := resolveAPIKey(keyOverride, providerStr)
	if err != nil {
		return nil, err
	}

	audioPath, err := prepareCompressedAudio(ctx, mediaPath, tempDir)
	if err != nil {
		return nil, err
	}

	return transcribeDocument(ctx, transcribeParams{
		audioPath:      audioPath,
		tempDir:        tempDir,
		provider:       transcribe.Provider(providerStr),
		apiKey:         apiKey,
		model:          model,
		language:       language,
		transcriptLang: "native",
		chunkMinutes:   chunkDuration,
		concurrency:    3,
	})
}

// diarization is best-effort: on failure the dub proceeds single-voice
func diarizeDocument(
	ctx context.Context,
	cmd *cobra.Command,
	mediaPath, tempDir string,
	doc *subtitle.Document,
) *subtitle.Document {
	command, _ := cmd.Flags().GetString("diarizer")
	hint, _ := cmd.Flags().GetInt("speakers")

	wavPath := filepath.Join(tempDir, "speech.wav")
	err := media.ExtractAudio(ctx, mediaPath, wavPath, media.DefaultExtractAudioOptions())
	if err != nil {
		logger.Warnw("diarization skipped: audio extraction failed", "error", err)
		return doc
	}

	intervals, err := diarize.NewCommandDiarizer(command).Diarize(ctx, wavPath, hint)
	if err != nil {
		logger.Warnw("diarization skipped", "error", err)
		return doc
	}
	if len(intervals) == 0 {
		logger.Infow("diarization unavailable, using single voice")
		return doc
	}

	logger.Infow("Diarization complete",
		"intervals", len(intervals),
		"speakers", diarize.SpeakerCount(intervals),
	)
	return diarize.AssignSpeakers(doc, intervals)
}

func translateForDub(
	ctx context.Context,
	cmd *cobra.Command,
	doc *subtitle.Document,
	sourceLang, targetLang, keyOverride string,
) (*subtitle.Document, error) {
	providerStr, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	apiKey, err := resolveAPIKey(keyOverride, providerStr)
	if err != nil {
		return nil, err
	}

	translator, err := translate.Factory(
		ctx,
		translate.Provider(providerStr),
		apiKey,
		translate.Options{
			InputLanguage:  sourceLang,
			TargetLanguage: targetLang,
			Model:          model,
			BatchSize:      batchSize,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	store, err := openCacheStore(cmd)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer store.Close()
	}

	svc, err := translate.NewService(translator, store, translate.ServiceOptions{
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}, logger)
	if err != nil {
		return nil, err
	}

	translated, err := svc.TranslateDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	return translated, nil
}

func renderDubTrack(
	ctx context.Context,
	cmd *cobra.Command,
	doc *subtitle.Document,
	keyOverride string,
) (*dub.Result, error) {
	providerStr, _ := cmd.Flags().GetString("tts-provider")
	model, _ := cmd.Flags().GetString("tts-model")
	command, _ := cmd.Flags().GetString("tts-command")
	voice, _ := cmd.Flags().GetString("voice")
	extraVoices, _ := cmd.Flags().GetStringSlice("extra-voices")
	refAudio, _ := cmd.Flags().GetString("ref-audio")
	refText, _ := cmd.Flags().GetString("ref-text")
	diarized, _ := cmd.Flags().GetBool("diarize")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")

	provider := dub.Provider(providerStr)

	var apiKey string
	if provider == dub.ProviderOpenAI {
		var err error
		apiKey, err = resolveAPIKey(keyOverride, "openai")
		if err != nil {
			return nil, err
		}
	}

	synth, err := dub.NewSynthesizer(provider, apiKey, dub.SynthOptions{
		Model:   model,
		Command: command,
		Clone: dub.CloneReference{
			AudioPath: refAudio,
			Text:      refText,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	dubber := dub.NewDubber(synth, dub.Options{
		Voice:             voice,
		ExtraVoices:       extraVoices,
		EnableDiarization: diarized,
		SampleRate:        sampleRate,
		Concurrency:       concurrency,
	}, logger)

	logger.Infow("Rendering dubbed track",
		"segments", len(doc.Segments),
		"concurrency", concurrency,
	)

	result, err := dubber.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("dub rendering failed: %w", err)
	}
	if result.FailedSegments > 0 {
		logger.Warnw("some segments degraded to silence",
			"failed", result.FailedSegments,
		)
	}
	return result, nil
}

// separation is best-effort: on failure the dub ships without background
func separateBackground(
	ctx context.Context,
	cmd *cobra.Command,
	mediaPath, tempDir string,
) string {
	command, _ := cmd.Flags().GetString("separator")

	fullAudio := filepath.Join(tempDir, "original.wav")
	err := media.ExtractAudio(ctx, mediaPath, fullAudio, media.ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 44100,
		Channels:   2,
	})
	if err != nil {
		logger.Warnw("background separation skipped: audio extraction failed", "error", err)
		return ""
	}

	sep := media.NewSeparator()
	sep.Command = command

	logger.Infow("Separating background music")
	bgPath, err := sep.SeparateBackground(ctx, fullAudio, filepath.Join(tempDir, "bg.wav"))
	if err != nil {
		logger.Warnw("background separation skipped", "error", err)
		return ""
	}
	return bgPath
}
