// Package translate batches subtitle texts against a remote chat-completion
// backend and normalizes whatever shape the model returns.
//
// Inputs are partitioned into fixed-size contiguous chunks translated
// sequentially; each chunk retries up to a fixed bound with exponential
// backoff. The per-chunk result is always index-aligned with the chunk: short
// responses are padded with empty entries and long ones truncated, so the
// subtitle synthesizer can never index out of range.
package translate
