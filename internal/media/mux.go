package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"doublage/internal/dub"
	ffmpegbin "doublage/internal/ffmpeg"
)

// MuxOptions selects what ends up in the output container alongside the
// original video stream.
type MuxOptions struct {
	SubtitlePath    string // optional subtitle track
	DubbedAudioPath string // optional replacement audio track
	BackgroundPath  string // optional background music, mixed under the dub
	TargetLang      string // two-letter code for stream metadata
	Hardcode        bool   // burn subtitles into the video stream
}

// BuildMuxArgs assembles the ffmpeg argument list for a mux. Kept separate
// from execution so the command shape is testable.
func BuildMuxArgs(
	videoPath, outputPath string,
	opts MuxOptions,
) ([]string, error) {
	hasDub := opts.DubbedAudioPath != ""
	hasBG := hasDub && opts.BackgroundPath != ""
	hasSubs := opts.SubtitlePath != ""
	softcode := hasSubs && !opts.Hardcode

	if !hasDub && !hasSubs {
		return nil, fmt.Errorf("nothing to mux: no audio track or subtitles")
	}

	args := []string{"-y", "-i", videoPath}
	inputs := 1

	if hasDub {
		args = append(args, "-i", opts.DubbedAudioPath)
		inputs++
	}
	if hasBG {
		args = append(args, "-i", opts.BackgroundPath)
		inputs++
	}
	srtInput := -1
	if softcode {
		args = append(args, "-i", opts.SubtitlePath)
		srtInput = inputs
		inputs++
	}

	if hasBG {
		filter := fmt.Sprintf(
			"[1:a]volume=%g[voc];[2:a]volume=%g[bg];[voc][bg]amix=inputs=2:duration=longest[mix]",
			dub.VoiceGain,
			dub.BackgroundGain,
		)
		args = append(args, "-filter_complex", filter)
	}

	if opts.Hardcode && hasSubs {
		args = append(args, "-vf", subtitleFilter(opts.SubtitlePath))
	}

	args = append(args, "-map", "0:v:0")
	if hasBG {
		args = append(args, "-map", "[mix]")
	} else if hasDub {
		args = append(args, "-map", "1:a:0")
	}
	if softcode {
		args = append(args, "-map", fmt.Sprintf("%d:0", srtInput))
	}

	if opts.Hardcode && hasSubs {
		args = append(args, "-c:v", "libx264", "-preset", "veryfast", "-crf", "22")
	} else {
		args = append(args, "-c:v", "copy")
	}

	if hasDub {
		args = append(args, "-c:a", "aac", "-b:a", "192k")
	} else {
		args = append(args, "-c:a", "copy")
	}

	iso := ISOCode(opts.TargetLang)
	if softcode {
		args = append(args,
			"-c:s", "mov_text",
			"-metadata:s:s:0", "language="+iso,
			"-metadata:s:s:0", "title="+LanguageName(opts.TargetLang),
		)
	}
	if hasDub {
		args = append(args, "-metadata:s:a:0", "language="+iso)
	}

	args = append(args, outputPath)
	return args, nil
}

// Mux writes a new container combining the original video with the dubbed
// audio and/or subtitle track.
func Mux(
	ctx context.Context,
	videoPath, outputPath string,
	opts MuxOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	args, err := BuildMuxArgs(videoPath, outputPath, opts)
	if err != nil {
		return err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux failed: %w (%s)",
			err, lastLine(stderr.String()))
	}
	return nil
}

// the subtitles video filter needs colons and quotes escaped
func subtitleFilter(srtPath string) string {
	escaped := strings.ReplaceAll(srtPath, ":", "\\:")
	escaped = strings.ReplaceAll(escaped, "'", `'\''`)
	return "subtitles='" + escaped + "'"
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
