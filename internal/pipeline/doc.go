// Package pipeline sequences the media adapters, the transcription service,
// the translation client, and the subtitle synthesizer around one input
// video.
//
// Each request runs as a strictly ordered series of stages; a stage failure
// halts the run and maps to exactly one terminal outcome. The orchestrator
// never retries a stage itself (retry lives inside the translation client),
// reports progress best-effort after each stage, and removes the
// request-scoped working directory on every exit path.
package pipeline
