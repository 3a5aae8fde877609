// Package script parses marker-delimited narration scripts into ordered
// segments. A line consisting solely of a bracketed identifier, e.g.
// [INTRO], opens a new segment; every following line up to the next
// marker (or end of input) belongs to that segment's text.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrNoSegments is returned when a script contains no segment markers at
// all; nothing can be synthesized from it.
var ErrNoSegments = errors.New("script contains no segment markers")

var markerRe = regexp.MustCompile(`^\[([A-Za-z][A-Za-z0-9_]*)\]$`)

// Segment is one named, ordered chunk of script text. Index is 0-based
// and stable across the batch run. Text may be empty when a marker is
// immediately followed by another marker; that is a per-segment problem,
// not a parse failure.
type Segment struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Text  string `json:"text"`
}

// Empty reports whether the segment has no text after trimming.
func (s Segment) Empty() bool {
	return strings.TrimSpace(s.Text) == ""
}

// Parse reads a script and returns its segments in input order. Lines
// before the first marker are ignored. Segment text lines are joined by
// a single space. End of input closes the last segment; no trailing
// marker is required.
func Parse(r io.Reader) ([]Segment, error) {
	var (
		segments  []Segment
		current   strings.Builder
		inSegment bool
	)

	closeSegment := func() {
		if !inSegment {
			return
		}
		segments[len(segments)-1].Text = current.String()
		current.Reset()
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := markerRe.FindStringSubmatch(line); m != nil {
			closeSegment()
			segments = append(segments, Segment{Index: len(segments), Name: m[1]})
			inSegment = true

			continue
		}

		if !inSegment || line == "" {
			continue
		}

		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	closeSegment()

	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	return segments, nil
}

// ParseString parses a script held in memory.
func ParseString(s string) ([]Segment, error) {
	return Parse(strings.NewReader(s))
}

// EmptySegments returns the names of segments with no text, in order.
// Callers surface these as per-segment problems before a batch run.
func EmptySegments(segments []Segment) []string {
	var names []string
	for _, seg := range segments {
		if seg.Empty() {
			names = append(names, seg.Name)
		}
	}

	return names
}
