// Package language provides unified language code normalization for the
// subtitle pipeline.
//
// The transcription engine reports ISO 639-1-ish codes (sometimes with
// regional variants such as zh-cn); this package canonicalizes them, decides
// the layout branch (Chinese source, English source, other), and maps codes
// to the display names used in translation prompts.
package language
