// Package ffmpeg wraps the ffmpeg invocations the pipeline performs: mono
// 16 kHz audio extraction and subtitle burn-in.
//
// Binary locations are resolved once at startup via ResolveTools (explicit
// config override first, then PATH). The subtitle path is escaped before it
// is interpolated into the filtergraph because ffmpeg treats backslash and
// colon as syntax there.
package ffmpeg
