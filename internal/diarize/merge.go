package diarize

import (
	"doublage/internal/subtitle"
)

// AssignSpeakers labels each subtitle segment with the speaker of the
// first interval, in list order, containing the segment's midpoint. The
// first-match rule on overlapping intervals is a deliberate simplicity
// choice, kept for compatibility with how the handoff format was
// produced historically; it is not a best-overlap selection. Segments
// whose midpoint falls in a gap keep speaker 0, and an empty interval
// list leaves every segment at speaker 0 (diarization disabled).
//
// The input document is not modified; a new segment slice is returned.
func AssignSpeakers(doc *subtitle.Document, intervals []Interval) *subtitle.Document {
	out := make([]subtitle.Segment, len(doc.Segments))
	copy(out, doc.Segments)

	for i := range out {
		mid := (out[i].Start + out[i].End) / 2

		speaker := 0
		for _, iv := range intervals {
			if iv.Start <= mid && mid <= iv.End {
				speaker = iv.Speaker
				break
			}
		}
		out[i].Speaker = speaker
	}

	return &subtitle.Document{Segments: out, Language: doc.Language}
}

// SpeakerCount returns the number of distinct speakers in the intervals.
func SpeakerCount(intervals []Interval) int {
	seen := make(map[int]struct{})
	for _, iv := range intervals {
		seen[iv.Speaker] = struct{}{}
	}
	return len(seen)
}
