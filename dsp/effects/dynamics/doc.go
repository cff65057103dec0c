// Package dynamics provides the level-control stages of the playback chain.
//
// Included processors:
//   - Compressor: stereo-linked peak compressor with per-sample attack and
//     release smoothing coefficients.
//   - Normalizer: running-RMS loudness normalizer with a bounded gain.
//   - Limiter: instant-attack stereo peak limiter with a dBFS ceiling.
//
// All processors are real-time safe and not thread-safe.
package dynamics
