package diarize

import (
	"testing"
	"time"

	"doublage/internal/subtitle"
)

func TestAssignSpeakersMidpointLookup(t *testing.T) {
	doc := &subtitle.Document{Segments: []subtitle.Segment{
		{Start: 0, End: 2 * time.Second, Text: "first"},           // mid 1s -> speaker 1
		{Start: 6 * time.Second, End: 8 * time.Second, Text: "x"}, // mid 7s -> speaker 2
		{Start: 20 * time.Second, End: 22 * time.Second, Text: "gap"},
	}}
	intervals := []Interval{
		{Start: 0, End: 5 * time.Second, Speaker: 1},
		{Start: 5 * time.Second, End: 10 * time.Second, Speaker: 2},
	}

	out := AssignSpeakers(doc, intervals)

	want := []int{1, 2, 0}
	for i, seg := range out.Segments {
		if seg.Speaker != want[i] {
			t.Errorf("segment %d: speaker = %d, want %d", i, seg.Speaker, want[i])
		}
	}
}

func TestAssignSpeakersFirstMatchWins(t *testing.T) {
	// segment midpoint 5.0s lies on the boundary of both intervals; the
	// first interval in list order must win regardless of its times
	doc := &subtitle.Document{Segments: []subtitle.Segment{
		{Start: 4 * time.Second, End: 6 * time.Second, Text: "boundary"},
	}}
	intervals := []Interval{
		{Start: 0, End: 5 * time.Second, Speaker: 1},
		{Start: 5 * time.Second, End: 10 * time.Second, Speaker: 2},
	}

	out := AssignSpeakers(doc, intervals)
	if got := out.Segments[0].Speaker; got != 1 {
		t.Errorf("expected first listed interval to win, got speaker %d", got)
	}

	// reversing the list order flips the winner
	reversed := []Interval{intervals[1], intervals[0]}
	out = AssignSpeakers(doc, reversed)
	if got := out.Segments[0].Speaker; got != 2 {
		t.Errorf("expected first listed interval to win after reorder, got speaker %d", got)
	}
}

func TestAssignSpeakersEmptyIntervals(t *testing.T) {
	doc := &subtitle.Document{Segments: []subtitle.Segment{
		{Start: 0, End: time.Second, Text: "a", Speaker: 9},
		{Start: time.Second, End: 2 * time.Second, Text: "b"},
	}}

	out := AssignSpeakers(doc, nil)
	for i, seg := range out.Segments {
		if seg.Speaker != 0 {
			t.Errorf("segment %d: expected speaker 0, got %d", i, seg.Speaker)
		}
	}
}

func TestAssignSpeakersDoesNotMutateInput(t *testing.T) {
	doc := &subtitle.Document{Segments: []subtitle.Segment{
		{Start: 0, End: 2 * time.Second, Text: "a"},
	}}
	intervals := []Interval{{Start: 0, End: 5 * time.Second, Speaker: 3}}

	_ = AssignSpeakers(doc, intervals)
	if doc.Segments[0].Speaker != 0 {
		t.Errorf("input document was mutated: speaker %d", doc.Segments[0].Speaker)
	}
}

func TestSpeakerCount(t *testing.T) {
	intervals := []Interval{
		{Speaker: 1}, {Speaker: 2}, {Speaker: 1}, {Speaker: 0},
	}
	if got := SpeakerCount(intervals); got != 3 {
		t.Errorf("SpeakerCount = %d, want 3", got)
	}
}
