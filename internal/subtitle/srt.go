package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseSRTFile reads and parses an SRT file.
func ParseSRTFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	doc, err := ParseSRT(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read SRT file: %w", err)
	}
	return doc, nil
}

// ParseSRT parses SRT content into a document. Blocks are separated by
// one or more blank lines; a block needs at least an index line, a
// "start --> end" line and one text line. Malformed blocks are silently
// skipped, which upstream tools commonly produce at the tail of a file.
// Appearance order is preserved and never resorted. A document with zero
// segments is not an error here; callers decide how to report it.
func ParseSRT(r io.Reader) (*Document, error) {
	var segments []Segment
	var block []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}

		if strings.TrimSpace(line) == "" {
			if seg, ok := parseBlock(block); ok {
				segments = append(segments, seg)
			}
			block = block[:0]
			continue
		}

		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if seg, ok := parseBlock(block); ok {
		segments = append(segments, seg)
	}

	return &Document{Segments: segments}, nil
}

// parseBlock converts one SRT block into a segment. It reports false for
// blocks with fewer than three non-empty lines or an unparseable
// timecode range line.
func parseBlock(lines []string) (Segment, bool) {
	if len(lines) < 3 {
		return Segment{}, false
	}

	index, _ := strconv.Atoi(strings.TrimSpace(lines[0]))

	parts := strings.SplitN(lines[1], "-->", 2)
	if len(parts) != 2 {
		return Segment{}, false
	}
	start, okStart := parseTimecode(strings.TrimSpace(parts[0]))
	end, okEnd := parseTimecode(strings.TrimSpace(parts[1]))
	if !okStart || !okEnd {
		return Segment{}, false
	}

	text := strings.Join(lines[2:], "\n")
	speaker, text := DecodeSpeakerTag(text)
	if strings.TrimSpace(text) == "" {
		return Segment{}, false
	}

	return Segment{
		Index:   index,
		Start:   start,
		End:     end,
		Text:    text,
		Speaker: speaker,
	}, true
}

// options controlling SRT serialization
type SerializeOptions struct {
	// KeepSpeakerTags re-encodes [S<id>] prefixes for segments with a
	// speaker above zero. Used for the diarization handoff file; final
	// delivery subtitles are written without tags.
	KeepSpeakerTags bool
}

// SerializeSRT writes the document in SRT block form, renumbering
// indices sequentially from 1.
func SerializeSRT(doc *Document, opts SerializeOptions) string {
	var sb strings.Builder

	for i, seg := range doc.Segments {
		text := seg.Text
		if opts.KeepSpeakerTags {
			text = EncodeSpeakerTag(seg.Speaker, text)
		}

		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("\n")
		sb.WriteString(FormatTimecode(seg.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimecode(seg.End))
		sb.WriteString("\n")
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// WriteSRTFile serializes the document to a file.
func WriteSRTFile(doc *Document, path string, opts SerializeOptions) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SerializeSRT(doc, opts)), 0644)
}
