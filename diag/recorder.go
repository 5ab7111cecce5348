// Package diag provides a bounded, compressed record of corrupt-frame
// byte windows captured during decoding, for post-mortem field-support
// inspection of logs that desynchronized.
//
// A Recorder is not required for decoding: the session package works
// correctly with no recorder attached. It exists purely to answer "what
// did the corrupt bytes actually look like" after the fact, without
// forcing every caller to retain the full input region just in case a
// resync happens.
package diag

import (
	"fmt"

	"github.com/flightrec/blackbox/compress"
	"github.com/flightrec/blackbox/internal/hash"
	"github.com/flightrec/blackbox/internal/pool"
)

// DefaultWindowSize bounds how many bytes around a corrupt frame's start
// are captured. Frames longer than this are truncated from the end.
const DefaultWindowSize = 256

// DefaultCapacity is the number of most-recent corrupt-frame captures a
// Recorder retains before evicting the oldest.
const DefaultCapacity = 16

// Capture is one compressed corrupt-frame window.
type Capture struct {
	// SessionOffset is the byte offset of the corrupt frame's first byte,
	// relative to the start of its session.
	SessionOffset int64
	// FrameKind is the marker byte of the frame that was judged corrupt,
	// or 0 if corruption was detected before any marker was read.
	FrameKind byte
	// RawLength is the number of bytes captured before compression.
	RawLength int
	// Fingerprint is the xxHash64 of the captured (pre-compression) bytes,
	// useful for deduplicating repeated corruption patterns across sessions.
	Fingerprint uint64

	compressed []byte
	codec      compress.Codec
}

// Bytes decompresses and returns the captured window. With a compressing
// codec the returned slice is newly allocated and owned by the caller;
// with CompressionNone it is the capture's own stored slice.
func (c Capture) Bytes() ([]byte, error) {
	if len(c.compressed) == 0 {
		return nil, nil
	}

	out, err := c.codec.Decompress(c.compressed)
	if err != nil {
		return nil, fmt.Errorf("diag: decompress capture at offset %d: %w", c.SessionOffset, err)
	}

	return out, nil
}

// Recorder retains a bounded ring of compressed corrupt-frame captures.
//
// Recorder is not safe for concurrent use by multiple goroutines; a
// session.Parser that shares one Recorder across callbacks must only
// ever be driven from a single goroutine, same as the Parser itself.
type Recorder struct {
	codec    compress.Codec
	window   int
	capacity int
	ring     []Capture
	next     int
	scratch  *pool.ByteBuffer
}

// NewRecorder creates a Recorder using the given compression algorithm.
//
// Parameters:
//   - compressionType: algorithm used to compress captured windows
//   - opts: optional overrides (WithWindowSize, WithCapacity)
//
// Returns:
//   - *Recorder: ready to receive Capture() calls
//   - error: if compressionType is not recognized
func NewRecorder(compressionType compress.CompressionType, opts ...RecorderOption) (*Recorder, error) {
	codec, err := compress.CreateCodec(compressionType, "diagnostic recorder")
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		codec:    codec,
		window:   DefaultWindowSize,
		capacity: DefaultCapacity,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.ring = make([]Capture, 0, r.capacity)
	r.scratch = pool.NewByteBuffer(r.window)

	return r, nil
}

// Capture compresses and stores a window of raw bytes surrounding a
// corrupt frame. If the recorder is already at capacity, the oldest
// capture is evicted.
//
// Parameters:
//   - sessionOffset: byte offset of the corrupt frame's first byte within its session
//   - frameKind: marker byte of the frame judged corrupt (0 if unknown)
//   - raw: the raw bytes to capture; truncated to the recorder's window size
func (r *Recorder) Capture(sessionOffset int64, frameKind byte, raw []byte) error {
	if len(raw) > r.window {
		raw = raw[:r.window]
	}

	r.scratch.Reset()
	r.scratch.MustWrite(raw)
	windowed := r.scratch.Bytes()

	compressed, err := r.codec.Compress(windowed)
	if err != nil {
		return fmt.Errorf("diag: compress capture at offset %d: %w", sessionOffset, err)
	}

	// The no-op codec returns the scratch buffer itself, which the next
	// Capture overwrites, so each capture keeps its own copy.
	stored := make([]byte, len(compressed))
	copy(stored, compressed)

	capture := Capture{
		SessionOffset: sessionOffset,
		FrameKind:     frameKind,
		RawLength:     len(windowed),
		Fingerprint:   hash.ID(windowed),
		compressed:    stored,
		codec:         r.codec,
	}

	if len(r.ring) < r.capacity {
		r.ring = append(r.ring, capture)
	} else {
		r.ring[r.next] = capture
		r.next = (r.next + 1) % r.capacity
	}

	return nil
}

// Captures returns the currently retained captures, oldest first.
func (r *Recorder) Captures() []Capture {
	if len(r.ring) < r.capacity {
		out := make([]Capture, len(r.ring))
		copy(out, r.ring)

		return out
	}

	out := make([]Capture, r.capacity)
	copy(out, r.ring[r.next:])
	copy(out[r.capacity-r.next:], r.ring[:r.next])

	return out
}

// Len returns the number of captures currently retained.
func (r *Recorder) Len() int {
	return len(r.ring)
}

// RecorderOption configures a Recorder at construction time.
type RecorderOption func(*Recorder)

// WithWindowSize overrides DefaultWindowSize.
func WithWindowSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.window = n
		}
	}
}

// WithCapacity overrides DefaultCapacity.
func WithCapacity(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}
