package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"doublage/internal/media"

	"github.com/spf13/cobra"
)

var muxCmd = &cobra.Command{
	Use:   "mux [video_file]",
	Short: "Mux a dubbed track and/or subtitles into a video",
	Long: `Combine an existing video with a dubbed audio track, background music,
and/or a subtitle file into a new container.

Subtitles are soft-coded as a mov_text stream with language metadata by
default; --hardcode burns them into the video instead.

Examples:
  doublage mux video.mp4 --audio dub.wav -t fr
  doublage mux video.mp4 --audio dub.wav --background bg.wav -t fr
  doublage mux video.mp4 --subtitles video.fr.srt -t fr --hardcode`,
	Args: cobra.ExactArgs(1),
	RunE: runMux,
}

func init() {
	rootCmd.AddCommand(muxCmd)

	muxCmd.Flags().
		String("audio", "", "Dubbed audio track to replace the original audio")
	muxCmd.Flags().
		String("background", "", "Background music mixed under the dubbed track")
	muxCmd.Flags().
		String("subtitles", "", "Subtitle file to include")
	muxCmd.Flags().
		StringP("target-language", "t", "", "Language code for stream metadata")
	muxCmd.Flags().
		Bool("hardcode", false, "Burn subtitles into the video stream")
}

func runMux(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	audioPath, _ := cmd.Flags().GetString("audio")
	bgPath, _ := cmd.Flags().GetString("background")
	subsPath, _ := cmd.Flags().GetString("subtitles")
	targetLang, _ := cmd.Flags().GetString("target-language")
	hardcode, _ := cmd.Flags().GetBool("hardcode")
	outputPath, _ := cmd.Flags().GetString("output")

	for _, path := range []string{videoPath, audioPath, bgPath, subsPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
		outputPath = baseName + ".muxed.mp4"
	}

	logger.Infow("Muxing",
		"video", videoPath,
		"audio", audioPath,
		"background", bgPath,
		"subtitles", subsPath,
		"output", outputPath,
	)

	err := media.Mux(context.Background(), videoPath, outputPath, media.MuxOptions{
		SubtitlePath:    subsPath,
		DubbedAudioPath: audioPath,
		BackgroundPath:  bgPath,
		TargetLang:      targetLang,
		Hardcode:        hardcode,
	})
	if err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Mux complete: %s\n", absOutput)
	return nil
}
