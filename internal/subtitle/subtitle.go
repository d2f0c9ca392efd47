package subtitle

import (
	"regexp"
	"strings"
	"time"
)

// represents one timed caption/dialogue unit
type Segment struct {
	Index   int
	Start   time.Duration
	End     time.Duration
	Text    string // physical lines joined with newlines, speaker tag stripped
	Speaker int    // 0 means unassigned / default speaker
}

// represents complete subtitle track
type Document struct {
	Segments []Segment
	Language string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for writing subtitles to files
type Writer interface {
	Write(doc *Document, path string) error
}

var markupRegex = regexp.MustCompile(`<[^>]+>`)

// SpokenText returns the segment text prepared for speech synthesis or
// translation: physical lines joined with a single space and inline
// markup tags stripped.
func (s Segment) SpokenText() string {
	text := strings.ReplaceAll(s.Text, "\n", " ")
	text = markupRegex.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Duration returns the window allotted to the segment on the timeline.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// TotalDuration returns the end time of the last-ending segment.
func (d *Document) TotalDuration() time.Duration {
	var max time.Duration
	for _, seg := range d.Segments {
		if seg.End > max {
			max = seg.End
		}
	}
	return max
}
