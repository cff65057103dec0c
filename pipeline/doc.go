// Package pipeline runs the enhancement components in render order over one
// audio stream.
//
// Per buffer, the [Orchestrator] feeds the analyzer, performs the throttled
// smart-mode check, then runs the noise reducer, the ten-band filter bank,
// the HiFi processor and, when one is attached, the external effects chain.
// All of it happens in place on interleaved float32 frames and never
// allocates or blocks.
package pipeline
