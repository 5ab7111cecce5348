// Package history holds the per-session record history the predictor
// engine reads from: a three-slot ring for the main (I/P) stream, a
// two-slot publish-on-write slot for GPS home, and a one-slot latch for
// GPS frames.
package history

import "github.com/flightrec/blackbox/frame"

// MainRing holds the current, previous, and previous-previous main
// (I/P) records. "Current" is decoded into in place; a keyframe
// rotation sets previous and previous-previous to the same record
// (a keyframe cannot see further back than itself), while an
// interframe rotation shifts the window by one.
type MainRing struct {
	slots [3]frame.Record
	cur   int
	// prev/prevPrev index into slots, or -1 when no record has been
	// published to that position yet.
	prev, prevPrev int
	valid          bool
}

// NewMainRing returns a ring with no history: Current is ready to
// decode into, Previous/PreviousPrevious return (nil, false).
func NewMainRing() *MainRing {
	return &MainRing{prev: -1, prevPrev: -1}
}

// Current returns the record slot to decode the next frame into.
func (r *MainRing) Current() *frame.Record {
	return &r.slots[r.cur]
}

// Previous returns the previous record, or (nil, false) if none exists yet.
func (r *MainRing) Previous() (*frame.Record, bool) {
	if r.prev < 0 {
		return nil, false
	}

	return &r.slots[r.prev], true
}

// PreviousPrevious returns the previous-previous record, or (nil, false).
func (r *MainRing) PreviousPrevious() (*frame.Record, bool) {
	if r.prevPrev < 0 {
		return nil, false
	}

	return &r.slots[r.prevPrev], true
}

// Valid reports whether the most recently rotated-in record was judged
// a valid reference point (i.e. the main stream is currently trustworthy).
func (r *MainRing) Valid() bool {
	return r.valid
}

// RotateKeyframe commits Current as a validated keyframe: both Previous
// and PreviousPrevious become the keyframe, since nothing further back
// is visible across a keyframe boundary. Current advances to an unused
// slot.
func (r *MainRing) RotateKeyframe() {
	r.prev = r.cur
	r.prevPrev = r.cur
	r.valid = true
	r.cur = r.nextSlot()
}

// RotateInterframe commits Current as a validated interframe: Previous
// becomes Current, PreviousPrevious becomes the old Previous. Current
// advances to an unused slot.
func (r *MainRing) RotateInterframe() {
	r.prevPrev = r.prev
	r.prev = r.cur
	r.valid = true
	r.cur = r.nextSlot()
}

// Invalidate marks the main stream untrustworthy without rotating the
// ring: the next frame will overwrite the same Current slot, and
// Previous/PreviousPrevious are left exactly as they were (still usable
// as predictor references, just not as a validated stream anymore from
// the caller's perspective).
func (r *MainRing) Invalidate() {
	r.valid = false
}

// Reset clears all history, as at the start of a new session.
func (r *MainRing) Reset() {
	*r = MainRing{prev: -1, prevPrev: -1}
}

func (r *MainRing) nextSlot() int {
	for s := 0; s < 3; s++ {
		if s != r.prev && s != r.prevPrev {
			return s
		}
	}

	// prev == prevPrev (just rotated a keyframe): any slot other than
	// that one is free.
	return (r.prev + 1) % 3
}

// HomeSlot holds the GPS-home two-slot handoff: a newly decoded GPS-home
// frame is written to Unpublished first, and only becomes the Published
// reference other frames may predict against once the frame is judged
// well-formed (spec.md's "publish on completion" rule).
type HomeSlot struct {
	unpublished frame.Record
	published   frame.Record
	valid       bool
}

// Unpublished returns the slot to decode the next GPS-home frame into.
func (h *HomeSlot) Unpublished() *frame.Record {
	return &h.unpublished
}

// Publish commits Unpublished as the new Published reference.
func (h *HomeSlot) Publish() {
	h.published = h.unpublished
	h.valid = true
}

// Published returns the most recently published GPS-home record, or
// (nil, false) if none has ever been published.
func (h *HomeSlot) Published() (*frame.Record, bool) {
	if !h.valid {
		return nil, false
	}

	return &h.published, true
}

// Reset clears all history, as at the start of a new session.
func (h *HomeSlot) Reset() {
	*h = HomeSlot{}
}

// LastSlot is a one-slot latch used for GPS frames, which have no
// multi-frame prediction and so need only remember the most recently
// decoded record, the one reported to frame callbacks.
type LastSlot struct {
	rec   frame.Record
	valid bool
}

// Current returns the slot to decode the next frame into.
func (l *LastSlot) Current() *frame.Record {
	return &l.rec
}

// Commit marks the current slot's contents as the latest valid record.
func (l *LastSlot) Commit() {
	l.valid = true
}

// Last returns the most recently committed record, or (nil, false).
func (l *LastSlot) Last() (*frame.Record, bool) {
	if !l.valid {
		return nil, false
	}

	return &l.rec, true
}

// Reset clears all history, as at the start of a new session.
func (l *LastSlot) Reset() {
	*l = LastSlot{}
}
