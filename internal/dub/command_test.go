package dub

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCommandSynthesizerMissingBinary(t *testing.T) {
	if _, err := NewCommandSynthesizer("/nonexistent/tts-binary", CloneReference{}); err == nil {
		t.Fatal("expected error for a missing synthesis binary")
	}
}

func TestNewCommandSynthesizerResolvesBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tts")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("failed to write stub binary: %v", err)
	}

	synth, err := NewCommandSynthesizer(path, CloneReference{})
	if err != nil {
		t.Fatalf("NewCommandSynthesizer error: %v", err)
	}
	if synth == nil {
		t.Fatal("expected a synthesizer")
	}
}

func TestNewSynthesizerRejectsMissingCommand(t *testing.T) {
	if _, err := NewSynthesizer(ProviderCommand, "", SynthOptions{}); err == nil {
		t.Error("expected error when no command is configured")
	}
	opts := SynthOptions{Command: "/nonexistent/tts-binary"}
	if _, err := NewSynthesizer(ProviderCommand, "", opts); err == nil {
		t.Error("expected error for a missing synthesis binary")
	}
}
