package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const DefaultSeparateTimeout = 30 * time.Minute

// Separator extracts the background (non-vocal) stem from an audio file by
// shelling out to a demucs-style two-stem separation tool.
type Separator struct {
	Command string        // separation binary (default "demucs")
	Device  string        // compute device passed as -d (default "cpu")
	Timeout time.Duration // model inference can be very slow
}

func NewSeparator() *Separator {
	return &Separator{
		Command: "demucs",
		Device:  "cpu",
		Timeout: DefaultSeparateTimeout,
	}
}

// SeparateBackground runs the separation tool on audioPath and returns the
// path to a background-only WAV written next to outputPath. The tool writes
// its stems under a "separated" directory in the working dir; the
// no_vocals stem for our input is picked out of it.
func (s *Separator) SeparateBackground(
	ctx context.Context,
	audioPath, outputPath string,
) (string, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return "", fmt.Errorf("audio file not found: %s", audioPath)
	}

	command := s.Command
	if command == "" {
		command = "demucs"
	}
	device := s.Device
	if device == "" {
		device = "cpu"
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSeparateTimeout
	}

	workDir, err := os.MkdirTemp("", "doublage-separate-*")
	if err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	absAudio, err := filepath.Abs(audioPath)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command,
		"--two-stems", "vocals",
		"-d", device,
		absAudio,
	)
	cmd.Dir = workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("separation failed: %w (%s)",
			err, lastLine(stderr.String()))
	}

	baseName := strings.TrimSuffix(
		filepath.Base(audioPath),
		filepath.Ext(audioPath),
	)
	stemPath, err := findBackgroundStem(
		filepath.Join(workDir, "separated"),
		baseName,
	)
	if err != nil {
		return "", err
	}

	if err := copyFile(stemPath, outputPath); err != nil {
		return "", fmt.Errorf("failed to copy background stem: %w", err)
	}
	return outputPath, nil
}

// the tool nests stems under a model-named directory, so search recursively
func findBackgroundStem(root, baseName string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || found != "" {
			return nil
		}
		if filepath.Base(path) == "no_vocals.wav" &&
			strings.Contains(path, baseName) {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan separation output: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("no background stem found under %s", root)
	}
	return found, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
