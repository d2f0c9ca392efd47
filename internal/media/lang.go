package media

// ISO 639-2/B tags ffmpeg expects in stream metadata
var isoCodes = map[string]string{
	"fr": "fre", "en": "eng", "es": "spa", "de": "ger",
	"it": "ita", "pt": "por", "zh": "chi", "ja": "jpn",
	"ko": "kor", "ru": "rus", "ar": "ara", "hi": "hin",
	"nl": "dut", "pl": "pol", "tr": "tur",
}

var languageNames = map[string]string{
	"fr": "French", "en": "English", "es": "Spanish", "de": "German",
	"it": "Italian", "pt": "Portuguese", "zh": "Chinese", "ja": "Japanese",
	"ko": "Korean", "ru": "Russian", "ar": "Arabic", "hi": "Hindi",
	"nl": "Dutch", "pl": "Polish", "tr": "Turkish",
}

// ISOCode maps a two-letter language code to the ISO 639-2 tag used in
// container metadata. Unknown codes map to "und".
func ISOCode(lang string) string {
	if code, ok := isoCodes[lang]; ok {
		return code
	}
	return "und"
}

// LanguageName returns the English name for a two-letter language code.
func LanguageName(lang string) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return "Unknown"
}
