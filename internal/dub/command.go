package dub

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// CommandSynthesizer runs an external TTS command, for local engines
// that are not reachable over an API. The command is invoked as
//
//	<command> --text TEXT --voice VOICE --output OUT.wav
//	          [--ref-audio PATH --ref-text TEXT]
//
// and must write a WAV file to the output path.
type CommandSynthesizer struct {
	command string
	clone   CloneReference
}

func NewCommandSynthesizer(command string, clone CloneReference) (*CommandSynthesizer, error) {
	if _, err := exec.LookPath(command); err != nil {
		return nil, fmt.Errorf("synthesis command not found: %w", err)
	}
	return &CommandSynthesizer{
		command: command,
		clone:   clone,
	}, nil
}

func (s *CommandSynthesizer) Synthesize(
	ctx context.Context,
	text, voice string,
) (Clip, error) {
	if text == "" {
		return Clip{}, fmt.Errorf("text is required")
	}

	tmpDir, err := os.MkdirTemp("", "doublage-tts-*")
	if err != nil {
		return Clip{}, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPath := filepath.Join(tmpDir, "segment.wav")

	args := []string{
		"--text", text,
		"--voice", voice,
		"--output", outputPath,
	}
	if s.clone.AudioPath != "" && s.clone.Text != "" {
		args = append(args,
			"--ref-audio", s.clone.AudioPath,
			"--ref-text", s.clone.Text,
		)
	}

	cmd := exec.CommandContext(ctx, s.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Clip{}, fmt.Errorf("synthesis command failed: %w (%s)",
			err, stderr.String())
	}

	clip, err := ReadWAVFile(outputPath)
	if err != nil {
		return Clip{}, fmt.Errorf("synthesis command produced no usable audio: %w", err)
	}

	return clip, nil
}
