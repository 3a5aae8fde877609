// Package engine provides synthesis engine adapters: a subprocess-backed
// engine wrapping a local TTS CLI and an HTTP engine talking to a
// standalone synthesis service. Both satisfy the batch orchestrator's
// SynthesisEngine port.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/example/voiceforge/internal/voice"
)

// ErrNoReference is returned when a profile offers no valid sample to
// use as the speaker reference.
var ErrNoReference = errors.New("profile has no usable reference sample")

// CLIEngine shells out to a local TTS executable per segment. The
// subprocess reads text on stdin and writes WAV bytes to stdout.
type CLIEngine struct {
	// ExecutablePath locates the TTS binary; empty means "voice-tts" on
	// PATH.
	ExecutablePath string
	// ConfigPath is passed through as --config when set.
	ConfigPath string
	// Quiet adds --quiet to suppress subprocess progress output.
	Quiet bool
	// ExtraArgs are pass-through key=value flags appended to every call.
	ExtraArgs []string
	// Stderr receives the subprocess's stderr when set.
	Stderr io.Writer
}

// runCLI is swappable in tests.
var runCLI = runCLICommand

// GenerateAudio synthesizes text with the profile's first valid sample
// as the speaker reference.
func (e *CLIEngine) GenerateAudio(ctx context.Context, profile *voice.Profile, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("synthesis failed: empty input text")
	}

	ref, ok := profile.ReferenceSample()
	if !ok {
		return nil, ErrNoReference
	}

	args := []string{"generate", "--text", "-", "--output-path", "-", "--speaker-ref", ref.SourceRef}
	if profile.Language != "" {
		args = append(args, "--language", profile.Language)
	}
	if e.ConfigPath != "" {
		args = append(args, "--config", e.ConfigPath)
	}
	if e.Quiet {
		args = append(args, "--quiet")
	}

	extra, err := buildPassthroughArgs(e.ExtraArgs)
	if err != nil {
		return nil, err
	}
	args = append(args, extra...)

	out, err := runCLI(ctx, e.ExecutablePath, args, text, e.Stderr)
	if err != nil {
		return nil, mapCLIError(err)
	}

	return out, nil
}

// SupportsProfile reports whether the profile is usable and its
// reference sample is readable on disk.
func (e *CLIEngine) SupportsProfile(profile *voice.Profile) bool {
	ref, ok := profile.ReferenceSample()
	if !ok {
		return false
	}

	_, err := os.Stat(ref.SourceRef)

	return err == nil
}

func runCLICommand(ctx context.Context, exe string, args []string, text string, stderr io.Writer) ([]byte, error) {
	if exe == "" {
		exe = "voice-tts"
	}

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdin = strings.NewReader(text)
	if stderr != nil {
		cmd.Stderr = stderr
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

func buildPassthroughArgs(items []string) ([]string, error) {
	args := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid engine arg %q: expected key=value", item)
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if key == "" {
			return nil, fmt.Errorf("invalid engine arg %q: empty key", item)
		}
		if strings.HasPrefix(key, "--") {
			args = append(args, key+"="+val)
		} else if strings.HasPrefix(key, "-") {
			args = append(args, "-"+strings.TrimPrefix(key, "-")+"="+val)
		} else {
			args = append(args, "--"+key+"="+val)
		}
	}

	return args, nil
}

func mapCLIError(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("synthesis failed: TTS executable not found; set engine.cli_path: %w", err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("synthesis failed: TTS subprocess returned non-zero exit: %w", err)
	}

	return err
}
