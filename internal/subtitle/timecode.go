package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// accepts both the SRT comma and the VTT dot as fractional separator
var timecodeRegex = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})$`)

// ParseTimecode converts an HH:MM:SS,mmm timestamp into a duration.
// Non-matching input yields zero; callers treat that as "skip this block"
// rather than a document-level failure.
func ParseTimecode(s string) time.Duration {
	d, ok := parseTimecode(s)
	if !ok {
		return 0
	}
	return d
}

func parseTimecode(s string) (time.Duration, bool) {
	matches := timecodeRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, false
	}

	h, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, false
	}
	m, _ := strconv.Atoi(matches[2])
	sec, _ := strconv.Atoi(matches[3])
	ms, _ := strconv.Atoi(matches[4])

	if m >= 60 || sec >= 60 {
		return 0, false
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, true
}

// FormatTimecode converts a duration into the SRT timestamp form
// HH:MM:SS,mmm with a comma separator and three millisecond digits.
// Negative durations render as zero.
func FormatTimecode(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
