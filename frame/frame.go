// Package frame defines the fixed-size field record and per-kind frame
// definition shared by the header parser and the session dispatcher,
// plus the iteration-rate filter that decides which P-frames a given
// P interval setting actually expects to exist.
package frame

import "github.com/flightrec/blackbox/format"

// FieldCap bounds the number of fields any single frame kind may
// declare, mirroring the original's FLIGHT_LOG_MAX_FIELDS. The
// predictor, encoding and signedness vectors and the Record are fixed
// arrays of this size rather than slices (field names are slices), so
// a Record is a plain value with no heap churn per frame (Design Notes).
const FieldCap = 128

// Definition describes how to decode and predict every field of one
// frame kind, populated from the header's "Field X encoding"/"Field X
// predictor" lines.
type Definition struct {
	Encoding  [FieldCap]format.FieldEncoding
	Predictor [FieldCap]format.FieldPredictor
	// Signed is only meaningful for the main (I/P) field definitions;
	// GPS/GPS-home/event fields have no signedness declaration.
	Signed [FieldCap]bool
	Count  int
}

// Record holds one frame's worth of decoded field values. It is a
// fixed-size array, not a slice, so history slots are plain value
// copies. Only Record[:n] for the owning definition's Count is
// semantically populated.
type Record [FieldCap]int32

// ShouldHaveFrame implements the iteration-rate filter deciding whether
// a P-frame is expected to exist at main-stream iteration idx, given
// the session's I interval and P interval (num/denom).
//
// This is the formula as specified, carried over unchanged:
// (idx mod I + P_num − 1) mod P_denom < P_num. The Open Question of
// whether this double-modulo is correct when I exceeds P_denom is
// preserved verbatim rather than "fixed" — a change here must be
// verified against real logs first.
func ShouldHaveFrame(idx, intervalI, pNum, pDenom int) bool {
	if pDenom <= 0 {
		pDenom = 1
	}

	if pNum <= 0 {
		pNum = 1
	}

	if intervalI <= 0 {
		intervalI = 1
	}

	return (idx%intervalI+pNum-1)%pDenom < pNum
}
