// Package doctor provides environment preflight checks for voiceforge.
package doctor

import (
	"fmt"
	"io"
	"os"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is
// unavailable.
type VersionFunc func() (string, error)

// HealthFunc probes a remote component and returns nil when it is reachable.
type HealthFunc func() error

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// TTSVersion returns the TTS executable's version output.
	TTSVersion VersionFunc
	// SkipTTS skips the executable check (http backend mode).
	SkipTTS bool
	// ServiceHealth probes the synthesis service's health endpoint.
	ServiceHealth HealthFunc
	// SkipService skips the service check (cli backend mode).
	SkipService bool
	// Dirs is the list of directories that must exist or be creatable.
	Dirs []string
	// ReferenceFiles is the list of normalized sample paths to verify on
	// disk, typically gathered from stored profiles.
	ReferenceFiles []string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- TTS executable -----------------------------------------------------
	if cfg.SkipTTS {
		fmt.Fprintf(w, "%s tts executable: skipped\n", PassMark)
	} else {
		ver, err := cfg.TTSVersion()
		if err != nil {
			res.fail(fmt.Sprintf("tts executable: %v", err))
			fmt.Fprintf(w, "%s tts executable: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s tts executable: %s\n", PassMark, ver)
		}
	}

	// ---- synthesis service --------------------------------------------------
	if cfg.SkipService {
		fmt.Fprintf(w, "%s synthesis service: skipped\n", PassMark)
	} else if cfg.ServiceHealth != nil {
		if err := cfg.ServiceHealth(); err != nil {
			res.fail(fmt.Sprintf("synthesis service: %v", err))
			fmt.Fprintf(w, "%s synthesis service: unreachable (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s synthesis service: healthy\n", PassMark)
		}
	}

	// ---- storage directories ------------------------------------------------
	for _, dir := range cfg.Dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			res.fail(fmt.Sprintf("directory %q: %v", dir, err))
			fmt.Fprintf(w, "%s directory %s: not writable (%v)\n", FailMark, dir, err)
		} else {
			fmt.Fprintf(w, "%s directory: %s\n", PassMark, dir)
		}
	}

	// ---- profile reference files --------------------------------------------
	for _, path := range cfg.ReferenceFiles {
		if _, err := os.Stat(path); err != nil {
			res.fail(fmt.Sprintf("reference file %q: %v", path, err))
			fmt.Fprintf(w, "%s reference file %s: not found\n", FailMark, path)
		} else {
			fmt.Fprintf(w, "%s reference file: %s\n", PassMark, path)
		}
	}

	return res
}
