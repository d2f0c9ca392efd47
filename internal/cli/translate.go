package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"doublage/internal/subtitle"
	"doublage/internal/translate"

	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate an SRT file to another language using AI",
	Long: `Translate an existing SRT subtitle file to another language using AI.

Translations are cached persistently, keyed by language pair and source
text, so rerunning a translation costs nothing. Timing and speaker
assignments are preserved.

Examples:
  doublage translate video.srt --target-language ja
  doublage translate video.srt -l en -t fr -o video.fr.srt
  doublage translate video.srt -t es --provider anthropic --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider default if empty)")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 50, "Number of subtitle entries per API request")
	translateCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	translateCmd.Flags().
		Bool("keep-speaker-tags", false, "Keep [S<id>] speaker tags in the output")
	addCacheFlags(translateCmd)

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	formatStr, _ := cmd.Flags().GetString("format")
	keepTags, _ := cmd.Flags().GetBool("keep-speaker-tags")
	outputPath, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}
	if ext := strings.ToLower(filepath.Ext(subtitlePath)); ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: input must be .srt", ext)
	}

	if inputLang != "" && strings.EqualFold(
		strings.TrimSpace(inputLang),
		strings.TrimSpace(targetLang),
	) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}

	provider := translate.Provider(providerStr)
	apiKey, err = resolveAPIKey(apiKey, string(provider))
	if err != nil {
		return err
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		outputPath = fmt.Sprintf(
			"%s.%s%s",
			baseName,
			targetLang,
			subtitle.GetExtensionForFormat(format),
		)
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"input_language", inputLang,
		"model", model,
	)

	doc, err := subtitle.ParseSRTFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(doc.Segments) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	logger.Infow("Parsed subtitle file", "entries", len(doc.Segments))

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	store, err := openCacheStore(cmd)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	svc, err := translate.NewService(translator, store, translate.ServiceOptions{
		SourceLang:  inputLang,
		TargetLang:  targetLang,
		Concurrency: concurrency,
	}, logger)
	if err != nil {
		return err
	}

	translated, err := svc.TranslateDocument(ctx, doc)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if err := writeDocument(translated, outputPath, format, keepTags); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(translated.Segments))
	fmt.Printf("  Target language: %s\n", targetLang)

	return nil
}

// SRT output honors the speaker-tag flag; other formats always deliver
// clean text
func writeDocument(
	doc *subtitle.Document,
	path string,
	format subtitle.Format,
	keepTags bool,
) error {
	if format == subtitle.FormatSRT {
		err := subtitle.WriteSRTFile(doc, path, subtitle.SerializeOptions{
			KeepSpeakerTags: keepTags,
		})
		if err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}
		return nil
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := writer.Write(doc, path); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}
