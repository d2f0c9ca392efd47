package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// in-band speaker marker used to hand diarization results to the dubbing
// stage through a plain SRT file: "[S<id>] text"
var speakerTagRegex = regexp.MustCompile(`^\[S(\d+)\]\s*`)

// DecodeSpeakerTag extracts a leading [S<id>] token from text. Absent
// tag returns (0, text unchanged).
func DecodeSpeakerTag(text string) (int, string) {
	matches := speakerTagRegex.FindStringSubmatch(text)
	if matches == nil {
		return 0, text
	}

	id, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, text
	}

	return id, text[len(matches[0]):]
}

// EncodeSpeakerTag prefixes [S<id>] to text for speaker ids above zero.
// Encoding is idempotent: a text already carrying the same tag is
// returned unchanged, and speaker 0 never emits a tag.
func EncodeSpeakerTag(speaker int, text string) string {
	if speaker <= 0 {
		return text
	}

	tag := fmt.Sprintf("[S%d]", speaker)
	if text == tag || strings.HasPrefix(text, tag+" ") {
		return text
	}

	return tag + " " + text
}
