// Package safety owns the user-facing configuration of the playback
// enhancement pipeline.
//
// A [Manager] receives control-plane requests (band gains, presets, tone
// controls, effect settings, noise reduction mode), forwards them to the
// render components and derives the gain-staging state that keeps a boosted
// curve from clipping: a negative pre-amp and a peak limiter in front of the
// output. Every accepted change is written to a [Store].
package safety
