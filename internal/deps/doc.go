// Package deps checks the availability of the external tools subfuse needs:
// the ffmpeg/ffprobe binaries and the whisper model file.
package deps
