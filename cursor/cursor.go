// Package cursor provides a minimal forward-reading byte cursor with
// one-byte pushback, the shared substrate every frame codec reads
// through.
//
// It is grounded on the original decoder's readChar/unreadChar pair:
// logPos advances on each successful read and a single decrement undoes
// the last one. Go reimplements that as explicit index bookkeeping
// rather than pointer arithmetic.
package cursor

// Cursor reads forward through a byte slice it does not own or copy.
//
// Cursor is not safe for concurrent use.
type Cursor struct {
	data []byte
	pos  int
	// unread marks that the most recent ReadByte succeeded and has not
	// since been undone by UnreadByte; it guards against a second
	// consecutive UnreadByte, which the caller has no legitimate reason
	// to perform.
	unread bool
	// failedReads counts read attempts that found no data available. It
	// lets a caller distinguish "cursor now sits exactly at the end of
	// the buffer because the last field read consumed the final byte"
	// from "a read genuinely ran out of data it needed", the same
	// distinction the original parser's readChar draws by setting its
	// private eof flag only on an actual failed read.
	failedReads int
}

// New creates a Cursor reading from the start of data. The slice is not
// copied; the caller must not mutate it while the Cursor is in use.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// ReadByte returns the next byte and true, or (0, false) at end of input.
func (c *Cursor) ReadByte() (byte, bool) {
	if c.pos >= len(c.data) {
		c.unread = false
		c.failedReads++

		return 0, false
	}

	b := c.data[c.pos]
	c.pos++
	c.unread = true

	return b, true
}

// UnreadByte rewinds the cursor by one byte, undoing the most recent
// successful ReadByte. It panics if there was no such read to undo: a
// second consecutive UnreadByte, or an UnreadByte before any ReadByte,
// is a programming error in the caller, not a malformed-input condition.
func (c *Cursor) UnreadByte() {
	if !c.unread {
		panic("cursor: UnreadByte called without a preceding successful ReadByte")
	}

	c.pos--
	c.unread = false
}

// Position returns the number of bytes consumed so far.
func (c *Cursor) Position() int {
	return c.pos
}

// EOF reports whether the cursor has consumed all of data.
func (c *Cursor) EOF() bool {
	return c.pos >= len(c.data)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// FailedReads returns the running count of read attempts that found no
// data available, so a caller can tell whether any read failed during a
// span of its own operations by diffing two calls to this method rather
// than comparing Position() to the buffer length (a read can legitimately
// end exactly at the buffer's end without ever failing).
func (c *Cursor) FailedReads() int {
	return c.failedReads
}

// Seek repositions the cursor to an absolute byte offset. It clears any
// pending UnreadByte eligibility, since the read it would undo is no
// longer the cursor's most recent operation.
//
// Seek panics if pos is negative or beyond the end of data; callers are
// expected to derive pos from values already known to be in range (e.g.
// a previously recorded Position()).
func (c *Cursor) Seek(pos int) {
	if pos < 0 || pos > len(c.data) {
		panic("cursor: Seek out of range")
	}

	c.pos = pos
	c.unread = false
	c.failedReads = 0
}

// Peek returns the next byte without consuming it, or (0, false) at end
// of input.
func (c *Cursor) Peek() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}

	return c.data[c.pos], true
}

// ReadBytes consumes and returns the next n bytes. It returns false if
// fewer than n bytes remain, in which case the cursor is not advanced.
func (c *Cursor) ReadBytes(n int) ([]byte, bool) {
	if n < 0 || c.pos+n > len(c.data) {
		c.failedReads++

		return nil, false
	}

	b := c.data[c.pos : c.pos+n]
	c.pos += n
	c.unread = false

	return b, true
}
