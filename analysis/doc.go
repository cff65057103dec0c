// Package analysis derives banded spectral features from the playback
// stream, classifies the genre with a fixed rule cascade and recommends a
// ten-band EQ curve.
//
// The realtime [Analyzer] runs on the render thread and never modifies the
// buffers it sees. The file-based path lives in package offline and
// produces the same [Result] shape.
package analysis
