package subtitles

import (
	"fmt"
	"math"
	"os"
	"strings"

	"subfuse/internal/language"
	"subfuse/internal/transcribe"
	"subfuse/internal/translate"
)

// Style names referenced by dialogue events. CJK styles render in yellow,
// Latin styles in white.
const (
	StyleLatinTop       = "LatinTop"
	StyleCJKTop         = "CJKTop"
	StyleLatinBottom    = "LatinBottom"
	StyleCJKBottom      = "CJKBottom"
	StyleCJKMidBottom   = "CJKMidBottom"
	StyleLatinMidBottom = "LatinMidBottom"
)

// ASS colour constants (&HAABBGGRR).
const (
	colourWhite       = "&H00FFFFFF"
	colourYellow      = "&H0000FFFF" // yellow: R=255 G=255 B=0
	colourTransparent = "&H00000000"
	colourOutline     = "&H00000000"
	colourShadow      = "&H64000000" // 40% opaque black
)

const (
	fontCJK   = "Noto Sans CJK SC"
	fontLatin = "Arial"
)

const header = `[Script Info]
ScriptType: v4.00+
PlayResX: 1280
PlayResY: 720
ScaledBorderAndShadow: yes
YCbCr Matrix: None

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
%s
[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// styleLine renders one style record. Alignment: 2=bottom-center, 8=top-center.
func styleLine(name, font string, size, alignment, marginV int, colour string) string {
	return fmt.Sprintf(
		"Style: %s,%s,%d,%s,%s,%s,%s,0,0,0,0,100,100,0,0,1,2,1,%d,10,10,%d,1",
		name, font, size, colour, colourTransparent, colourOutline, colourShadow, alignment, marginV,
	)
}

// The six predefined styles used across layouts. The mid-bottom rows sit
// ~56 px above the bottom rows (font 36 * 1.3 line height plus a gap) so a
// stacked pair never overlaps.
var styles = strings.Join([]string{
	styleLine(StyleLatinTop, fontLatin, 32, 8, 20, colourWhite),
	styleLine(StyleCJKTop, fontCJK, 36, 8, 20, colourYellow),
	styleLine(StyleLatinBottom, fontLatin, 32, 2, 12, colourWhite),
	styleLine(StyleCJKBottom, fontCJK, 36, 2, 12, colourYellow),
	styleLine(StyleCJKMidBottom, fontCJK, 36, 2, 62, colourYellow),
	styleLine(StyleLatinMidBottom, fontLatin, 32, 2, 62, colourWhite),
}, "\n")

// Event is one caption row.
type Event struct {
	Start float64
	End   float64
	Style string
	Text  string
}

// Document is a write-once subtitle track: an ordered list of caption rows.
type Document struct {
	Events []Event
}

// Translations carries the translation result for a request: Single for
// Chinese or English sources, Dual for everything else.
type Translations struct {
	Single []string
	Dual   []translate.Pair
}

// Synthesize lays out bilingual caption rows for every segment. Pure and
// deterministic; missing translation entries render as empty rows rather
// than being skipped.
//
// Layout policy:
//   - Chinese source: original above English translation, both in the
//     bottom quarter (two rows).
//   - English source: Chinese translation above the English original,
//     both in the bottom quarter (two rows).
//   - Other source: original at the top of frame, Chinese mid-bottom,
//     English bottom (three rows).
func Synthesize(segments []transcribe.Segment, sourceLang string, translations Translations) Document {
	doc := Document{Events: make([]Event, 0, len(segments)*3)}

	isChinese := language.IsChinese(sourceLang)
	isEnglish := language.IsEnglish(sourceLang)

	for i, seg := range segments {
		switch {
		case isChinese:
			doc.append(seg, StyleCJKMidBottom, seg.Text)
			doc.append(seg, StyleLatinBottom, singleAt(translations.Single, i))
		case isEnglish:
			doc.append(seg, StyleCJKMidBottom, singleAt(translations.Single, i))
			doc.append(seg, StyleLatinBottom, seg.Text)
		default:
			pair := dualAt(translations.Dual, i)
			doc.append(seg, StyleLatinTop, seg.Text)
			doc.append(seg, StyleCJKMidBottom, pair.Primary)
			doc.append(seg, StyleLatinBottom, pair.Secondary)
		}
	}
	return doc
}

func (d *Document) append(seg transcribe.Segment, style, text string) {
	d.Events = append(d.Events, Event{Start: seg.Start, End: seg.End, Style: style, Text: text})
}

func singleAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func dualAt(values []translate.Pair, i int) translate.Pair {
	if i < len(values) {
		return values[i]
	}
	return translate.Pair{}
}

// Render serializes the document: fixed header, six style records, then one
// Dialogue line per caption row.
func (d Document) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, header, styles)
	for _, event := range d.Events {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			FormatTimestamp(event.Start),
			FormatTimestamp(event.End),
			event.Style,
			Escape(event.Text),
		)
	}
	return b.String()
}

// WriteFile writes the serialized document as UTF-8 with a BOM, which the
// burn-in filter expects.
func (d Document) WriteFile(path string) error {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte(d.Render())...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write subtitle document: %w", err)
	}
	return nil
}

// FormatTimestamp converts seconds to the ASS timestamp form H:MM:SS.CC:
// non-padded hours, zero-padded minutes/seconds, round-half-up centiseconds
// (carrying into the seconds field on overflow).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	// Round to milliseconds first so values like 1.005 (stored as
	// 1.00499999...) still land on the intended centisecond.
	totalMS := int64(math.Round(seconds * 1000))
	totalCS := (totalMS + 5) / 10

	h := totalCS / 360000
	m := (totalCS % 360000) / 6000
	s := (totalCS % 6000) / 100
	cs := totalCS % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// Escape neutralizes characters with special meaning in ASS dialogue text:
// literal newlines become forced line breaks and braces are escaped because
// they delimit inline override tags.
func Escape(text string) string {
	text = strings.ReplaceAll(text, "\n", `\N`)
	text = strings.ReplaceAll(text, "{", `\{`)
	return strings.ReplaceAll(text, "}", `\}`)
}
