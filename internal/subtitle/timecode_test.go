package subtitle

import (
	"testing"
	"time"
)

func TestParseTimecode(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"00:00:00,000", 0},
		{"00:00:01,000", time.Second},
		{"00:01:30,500", 90*time.Second + 500*time.Millisecond},
		{"01:02:03,004", time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond},
		{"00:00:01.250", time.Second + 250*time.Millisecond}, // dot separator tolerated
		{"99:59:59,999", 99*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond},
		{"100:00:00,000", 100 * time.Hour}, // hours are unbounded
	}

	for _, tc := range cases {
		if got := ParseTimecode(tc.input); got != tc.want {
			t.Errorf("ParseTimecode(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseTimecodeRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"garbage",
		"00:00:01",
		"0:00:01,000",
		"00:61:00,000",
		"00:00:61,000",
		"00:00:01,00",
		"00-00-01,000",
	}

	for _, input := range inputs {
		if got := ParseTimecode(input); got != 0 {
			t.Errorf("ParseTimecode(%q) = %v, want 0", input, got)
		}
	}
}

func TestFormatTimecode(t *testing.T) {
	cases := []struct {
		input time.Duration
		want  string
	}{
		{0, "00:00:00,000"},
		{time.Second, "00:00:01,000"},
		{90*time.Second + 500*time.Millisecond, "00:01:30,500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03,004"},
		{-time.Second, "00:00:00,000"}, // negative clamps to zero
	}

	for _, tc := range cases {
		if got := FormatTimecode(tc.input); got != tc.want {
			t.Errorf("FormatTimecode(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTimecodeRoundTrip(t *testing.T) {
	// millisecond precision across the representable range, including the
	// upper bound of two-digit hours
	durations := []time.Duration{
		0,
		time.Millisecond,
		999 * time.Millisecond,
		time.Second,
		time.Minute,
		time.Hour,
		12*time.Hour + 34*time.Minute + 56*time.Second + 789*time.Millisecond,
		99*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond,
	}

	for _, d := range durations {
		if got := ParseTimecode(FormatTimecode(d)); got != d {
			t.Errorf("round trip of %v yielded %v", d, got)
		}
	}
}
