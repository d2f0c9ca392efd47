package subtitle

import "testing"

func TestDecodeSpeakerTag(t *testing.T) {
	cases := []struct {
		input       string
		wantSpeaker int
		wantText    string
	}{
		{"[S1] Hello", 1, "Hello"},
		{"[S0] World", 0, "World"},
		{"[S12]No space", 12, "No space"},
		{"Hello", 0, "Hello"},
		{"[S] not a tag", 0, "[S] not a tag"},
		{"mid [S1] text", 0, "mid [S1] text"},
	}

	for _, tc := range cases {
		speaker, text := DecodeSpeakerTag(tc.input)
		if speaker != tc.wantSpeaker || text != tc.wantText {
			t.Errorf("DecodeSpeakerTag(%q) = (%d, %q), want (%d, %q)",
				tc.input, speaker, text, tc.wantSpeaker, tc.wantText)
		}
	}
}

func TestEncodeSpeakerTag(t *testing.T) {
	if got := EncodeSpeakerTag(2, "Hello"); got != "[S2] Hello" {
		t.Errorf("EncodeSpeakerTag(2, Hello) = %q", got)
	}
	if got := EncodeSpeakerTag(0, "Hello"); got != "Hello" {
		t.Errorf("speaker 0 must not emit a tag, got %q", got)
	}
}

func TestEncodeSpeakerTagIdempotent(t *testing.T) {
	once := EncodeSpeakerTag(3, "Bonjour")
	twice := EncodeSpeakerTag(3, once)
	if once != twice {
		t.Errorf("double encode changed text: %q vs %q", once, twice)
	}
	if got := EncodeSpeakerTag(3, "[S3]"); got != "[S3]" {
		t.Errorf("bare tag must stay unchanged, got %q", got)
	}
}

func TestEncodeSpeakerTagDistinctIDs(t *testing.T) {
	// [S1] is not a prefix match for [S12]
	got := EncodeSpeakerTag(1, "[S12] text")
	if got != "[S1] [S12] text" {
		t.Errorf("expected new tag prefixed, got %q", got)
	}
}

func TestSpeakerTagRoundTrip(t *testing.T) {
	for _, speaker := range []int{0, 1, 5, 42} {
		encoded := EncodeSpeakerTag(speaker, "some dialogue")
		gotSpeaker, gotText := DecodeSpeakerTag(encoded)
		if gotSpeaker != speaker || gotText != "some dialogue" {
			t.Errorf("round trip speaker %d: got (%d, %q)", speaker, gotSpeaker, gotText)
		}
	}
}
