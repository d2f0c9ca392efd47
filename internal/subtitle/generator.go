package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Generator normalizes raw transcription segments into display-ready
// subtitle segments, splitting entries that run too long in characters
// or duration.
type Generator struct {
	MaxCharsPerLine int
	MaxLinesPerSub  int
	MinDuration     time.Duration
	MaxDuration     time.Duration
}

func NewGenerator() *Generator {
	return &Generator{
		MaxCharsPerLine: 42, // Standard subtitle line length
		MaxLinesPerSub:  2,  // Most players support 2 lines
		MinDuration:     time.Second,
		MaxDuration:     7 * time.Second,
	}
}

// converts transcription segments to a subtitle document
func (g *Generator) Generate(segments []Segment) *Document {
	var out []Segment
	index := 1

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		if g.needsSplit(text, seg.End-seg.Start) {
			split := g.splitSegment(seg, index)
			out = append(out, split...)
			index += len(split)
		} else {
			out = append(out, Segment{
				Index:   index,
				Start:   seg.Start,
				End:     seg.End,
				Text:    g.formatText(text),
				Speaker: seg.Speaker,
			})
			index++
		}
	}

	return &Document{Segments: out}
}

func (g *Generator) needsSplit(text string, duration time.Duration) bool {
	// if text is too long, split
	if utf8.RuneCountInString(text) > g.MaxCharsPerLine*g.MaxLinesPerSub {
		return true
	}

	// if duration is too long, split
	if duration > g.MaxDuration {
		return true
	}

	return false
}

// splits long segment into multiple entries
func (g *Generator) splitSegment(seg Segment, startIndex int) []Segment {
	text := strings.TrimSpace(seg.Text)
	words := strings.Fields(text)
	totalDuration := seg.End - seg.Start

	if len(words) == 0 {
		return nil
	}

	// approximate characters per subtitle
	maxChars := g.MaxCharsPerLine * g.MaxLinesPerSub
	totalChars := utf8.RuneCountInString(text)

	// estimate of splits needed
	numSplits := (totalChars + maxChars - 1) / maxChars
	if numSplits < 1 {
		numSplits = 1
	}

	durationSplits := int(totalDuration/g.MaxDuration) + 1
	if durationSplits > numSplits {
		numSplits = durationSplits
	}

	// distribute words across splits
	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	durationPerSplit := totalDuration / time.Duration(numSplits)

	var out []Segment
	currentStart := seg.Start

	for i := 0; i < numSplits && len(words) > 0; i++ {
		// take words for this split
		endIdx := wordsPerSplit
		if endIdx > len(words) {
			endIdx = len(words)
		}

		splitWords := words[:endIdx]
		words = words[endIdx:]

		splitText := strings.Join(splitWords, " ")
		currentEnd := currentStart + durationPerSplit

		// Last split should end at the original end time
		if len(words) == 0 {
			currentEnd = seg.End
		}

		out = append(out, Segment{
			Index:   startIndex + i,
			Start:   currentStart,
			End:     currentEnd,
			Text:    g.formatText(splitText),
			Speaker: seg.Speaker,
		})

		currentStart = currentEnd
	}

	return out
}

// formatText formats text for display with line wrapping
func (g *Generator) formatText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	// if text fits on one line, return as is
	if runeCount <= g.MaxCharsPerLine {
		return text
	}

	// try to split into two lines at a natural break point
	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the best split point (closest to middle)
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		line1 := strings.Join(words[:bestSplit], " ")
		line2 := strings.Join(words[bestSplit:], " ")
		return line1 + "\n" + line2
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
