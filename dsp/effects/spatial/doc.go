// Package spatial provides the stereo image stages of the playback chain.
//
// Included processors:
//   - Widener: mid/side widening with the side boosted by 1 + 2*amount.
//   - Crossfeed: short-delay blend of each channel into the opposite one.
package spatial
