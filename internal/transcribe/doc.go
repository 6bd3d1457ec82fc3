// Package transcribe wraps a local whisper.cpp speech model behind a small
// service interface.
//
// The model is loaded lazily on first use and shared by all in-flight
// requests; loading is guarded so concurrent first callers perform exactly
// one initialization. Each transcription call creates its own inference
// context over the shared model, so calls from concurrent requests do not
// serialize on each other.
package transcribe
