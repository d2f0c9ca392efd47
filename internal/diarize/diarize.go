package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// speaker-labeled time interval produced by an external diarization engine
type Interval struct {
	Start   time.Duration
	End     time.Duration
	Speaker int
}

// interface for speaker diarization engines
type Diarizer interface {
	// Diarize partitions the audio into speaker-labeled intervals. An
	// empty result means diarization is unavailable, which callers treat
	// as "every segment keeps the default speaker", not as a failure.
	Diarize(ctx context.Context, audioPath string, speakerHint int) ([]Interval, error)
}

// JSON shape emitted by the external diarizer command, times in seconds
type intervalJSON struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker int     `json:"speaker"`
}

// CommandDiarizer runs an external diarization command that writes a
// JSON interval list to stdout:
//
//	[{"start": 0.0, "end": 2.5, "speaker": 1}, ...]
type CommandDiarizer struct {
	// Command is the executable, e.g. a wrapper around a diarization
	// model. It receives the audio path as its first argument and, when a
	// speaker hint is set, "--num-speakers N".
	Command string
	Args    []string
	Timeout time.Duration
}

func NewCommandDiarizer(command string, args ...string) *CommandDiarizer {
	return &CommandDiarizer{
		Command: command,
		Args:    args,
		Timeout: 10 * time.Minute,
	}
}

func (d *CommandDiarizer) Diarize(
	ctx context.Context,
	audioPath string,
	speakerHint int,
) ([]Interval, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	args := append([]string{}, d.Args...)
	args = append(args, audioPath)
	if speakerHint > 0 {
		args = append(args, "--num-speakers", strconv.Itoa(speakerHint))
	}

	cmd := exec.CommandContext(ctx, d.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("diarization command failed: %w (%s)",
			err, stderr.String())
	}

	var raw []intervalJSON
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse diarization output: %w", err)
	}

	intervals := make([]Interval, 0, len(raw))
	for _, r := range raw {
		intervals = append(intervals, Interval{
			Start:   time.Duration(r.Start * float64(time.Second)),
			End:     time.Duration(r.End * float64(time.Second)),
			Speaker: r.Speaker,
		})
	}

	return intervals, nil
}
