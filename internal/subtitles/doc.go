// Package subtitles synthesizes the bilingual ASS subtitle document that is
// burned into the output video.
//
// Synthesize is a pure function from (segments, source language,
// translations) to an ordered list of caption rows; the serialized form is
// byte-compatible with the ffmpeg ass filter (fixed header, six style
// records, UTF-8 with BOM).
package subtitles
