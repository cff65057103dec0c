// Package denoise implements STFT spectral-subtraction noise reduction.
//
// Each channel runs 1024-sample Hann frames at 75% overlap. The first 20
// frames after a reset learn a per-bin minimum magnitude; the learned
// estimate is then scaled by 1.2 and subtracted from every following frame,
// floored, temporally smoothed and resynthesised with the original phase.
// Mode off is an exact pass-through with no added latency; every other
// mode delays the signal by one frame.
package denoise
