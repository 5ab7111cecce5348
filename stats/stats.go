// Package stats accumulates per-frame-kind and per-field statistics
// while a session decodes: valid/corrupt/desync counts and byte-size
// histograms per kind, and running min/max per field.
//
// Grounded on updateFieldStatistics and the stats_t bookkeeping
// scattered through the original C parser's parse loop.
package stats

import "github.com/flightrec/blackbox/format"

// FrameStats accumulates counts and a byte-size histogram for one
// frame kind.
type FrameStats struct {
	Valid, Corrupt, Desync int64
	Bytes                  int64
	SizeHistogram          map[int]int64
}

// RecordValid accounts for one successfully validated frame of size n bytes.
func (s *FrameStats) RecordValid(n int) {
	s.Valid++
	s.Bytes += int64(n)
	s.recordSize(n)
}

// RecordCorrupt accounts for one frame judged corrupt.
func (s *FrameStats) RecordCorrupt(n int) {
	s.Corrupt++
	s.recordSize(n)
}

// RecordDesync accounts for one frame rejected for desynchronization
// (e.g. a keyframe regression), distinct from outright corruption.
func (s *FrameStats) RecordDesync(n int) {
	s.Desync++
	s.recordSize(n)
}

func (s *FrameStats) recordSize(n int) {
	if s.SizeHistogram == nil {
		s.SizeHistogram = make(map[int]int64)
	}

	s.SizeHistogram[n]++
}

// FieldStats tracks the running min/max of one field across a session,
// comparing signed or unsigned depending on the field's declared
// signedness.
type FieldStats struct {
	Signed      bool
	MinS, MaxS  int32
	MinU, MaxU  uint32
	initialized bool
}

// Update folds one decoded value into the running min/max. The first
// call seeds both bounds; subsequent calls tighten them.
func (f *FieldStats) Update(value int32) {
	if !f.initialized {
		f.MinS, f.MaxS = value, value
		f.MinU, f.MaxU = uint32(value), uint32(value)
		f.initialized = true

		return
	}

	if f.Signed {
		if value < f.MinS {
			f.MinS = value
		}

		if value > f.MaxS {
			f.MaxS = value
		}

		return
	}

	u := uint32(value)
	if u < f.MinU {
		f.MinU = u
	}

	if u > f.MaxU {
		f.MaxU = u
	}
}

// Tracker is the full set of statistics accumulated over one session.
type Tracker struct {
	Frame                         [5]FrameStats
	Field                         []FieldStats
	TotalBytes                    int64
	TotalCorruptFrames            int64
	IntentionallyAbsentIterations int64
}

// NewTracker returns a Tracker with fieldCount field slots, each
// carrying the signedness declared for the main (I/P) field at that
// index (only main fields have a meaningful signedness declaration).
func NewTracker(fieldCount int, signed []bool) *Tracker {
	fields := make([]FieldStats, fieldCount)

	for i := range fields {
		if i < len(signed) {
			fields[i].Signed = signed[i]
		}
	}

	return &Tracker{Field: fields}
}

// RecordFrame folds one well-formed (byte-level) frame into the kind's
// frame statistics. A frame the dispatcher judges well-formed is
// counted here regardless of its own semantic validity (a keyframe that
// fails the monotonicity check, or a GPS frame decoded before any home
// fix, is still a well-formed frame at the byte level); the exception is
// a P frame decoded while the stream is unsynchronized, which the
// dispatcher counts with RecordDesync instead.
//
// fieldsValid additionally gates the per-field min/max update, which
// only ever applies to the main (I/P) kinds and only when the frame's
// own semantic validity holds (a rejected keyframe must not pollute
// field statistics, even though it still counts as a well-formed
// frame).
func (t *Tracker) RecordFrame(kind format.FrameKind, n int, values []int32, fieldsValid bool) {
	t.Frame[kind.FrameSlot()].RecordValid(n)
	t.TotalBytes += int64(n)

	if !fieldsValid || (kind != format.FrameKindIntra && kind != format.FrameKindInter) {
		return
	}

	for i, v := range values {
		if i >= len(t.Field) {
			break
		}

		t.Field[i].Update(v)
	}
}

// RecordDesync folds a well-formed but semantically desynchronized
// frame (a P-frame received while the main stream is already invalid)
// into the kind's frame statistics. Distinct from RecordCorrupt: a
// desynchronized frame is not itself malformed, it simply can't be
// trusted until the next valid keyframe resynchronizes the stream.
func (t *Tracker) RecordDesync(kind format.FrameKind, n int) {
	t.Frame[kind.FrameSlot()].RecordDesync(n)
}

// FieldAtLeast reports whether value is greater than or equal to field
// i's currently recorded maximum, comparing signed or unsigned per the
// field's declared signedness. Used by the keyframe monotonicity check
// (spec.md's "iteration and timestamp must be non-decreasing"), which
// must compare against the maximum recorded *before* this frame updates
// it.
func (t *Tracker) FieldAtLeast(i int, value int32) bool {
	if i < 0 || i >= len(t.Field) {
		return true
	}

	f := &t.Field[i]
	if f.Signed {
		return value >= f.MaxS
	}

	return uint32(value) >= f.MaxU
}

// RecordCorrupt folds a corrupt frame into both the kind's frame
// statistics and the session-wide corrupt-frame total.
func (t *Tracker) RecordCorrupt(kind format.FrameKind, n int) {
	slot := kind.FrameSlot()
	if slot < 0 {
		slot = 0
	}

	t.Frame[slot].RecordCorrupt(n)
	t.TotalCorruptFrames++
}

// AddSkippedIterations accumulates intentionally-absent iterations
// counted by the iteration-rate filter (spec.md §4.6), distinguishing
// expected gaps from corruption.
func (t *Tracker) AddSkippedIterations(n int) {
	t.IntentionallyAbsentIterations += int64(n)
}
