package language

import (
	"strings"

	"golang.org/x/text/language"
)

type entry struct {
	code    string // ISO 639-1 (2-letter), lowercased
	display string // Name used in translation prompts
}

// Prompt display names for the languages the translation backend sees most.
// Unlisted codes fall back to the canonicalized tag string so the backend
// still receives something meaningful.
var languages = []entry{
	{"en", "English"},
	{"zh", "Simplified Chinese"},
	{"zh-cn", "Simplified Chinese"},
	{"zh-tw", "Traditional Chinese"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"fr", "French"},
	{"de", "German"},
	{"es", "Spanish"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"ar", "Arabic"},
	{"it", "Italian"},
	{"nl", "Dutch"},
	{"hi", "Hindi"},
	{"vi", "Vietnamese"},
	{"th", "Thai"},
}

var byCode map[string]*entry

func init() {
	byCode = make(map[string]*entry, len(languages))
	for i := range languages {
		byCode[languages[i].code] = &languages[i]
	}
}

// Normalize lowercases and canonicalizes a detected language code. Regional
// Chinese variants are preserved (zh-cn, zh-tw) because they select different
// prompt targets; everything else collapses to the base ISO 639-1 code when
// the tag is parseable, or passes through trimmed and lowercased otherwise.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if _, ok := byCode[code]; ok {
		return code
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return code
	}
	return base.String()
}

// IsChinese reports whether the code names Chinese, including the regional
// variants the transcription engine emits.
func IsChinese(code string) bool {
	switch Normalize(code) {
	case "zh", "zh-cn", "zh-tw":
		return true
	}
	return false
}

// IsEnglish reports whether the code names English.
func IsEnglish(code string) bool {
	return Normalize(code) == "en"
}

// PromptName returns the language name used when instructing the translation
// backend, e.g. "zh" -> "Simplified Chinese". Unrecognized codes pass through
// unchanged so the backend sees the raw code rather than an empty target.
func PromptName(code string) string {
	normalized := Normalize(code)
	if e, ok := byCode[normalized]; ok {
		return e.display
	}
	if normalized != "" {
		return normalized
	}
	return code
}
