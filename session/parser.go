package session

import (
	"fmt"

	"github.com/flightrec/blackbox/cursor"
	"github.com/flightrec/blackbox/diag"
	"github.com/flightrec/blackbox/errs"
	"github.com/flightrec/blackbox/format"
	"github.com/flightrec/blackbox/header"
	"github.com/flightrec/blackbox/history"
	"github.com/flightrec/blackbox/stats"
)

// Field positions shared by every main (I/P) frame definition: position
// 0 is the iteration counter, position 1 is the timestamp in
// microseconds (spec.md §3 "Field record").
const (
	FieldIndexIteration = 0
	FieldIndexTime      = 1
)

// parserState is the dispatcher's two-state resync machine (spec.md §4.4).
type parserState int

const (
	stateHeader parserState = iota
	stateData
)

// frameHandler bundles one frame kind's parse and completion routines,
// dispatched by marker byte (spec.md §9 "a fixed table of {marker,
// parse, complete} suffices").
type frameHandler struct {
	parse    func(p *Parser, c *cursor.Cursor) error
	complete func(p *Parser, frameStart, frameEnd int64)
}

// handlers is indexed by format.FrameKind.FrameSlot(), built once at
// init rather than as a composite literal with computed indices (method
// calls are not constant expressions in Go).
var handlers [5]frameHandler

func init() {
	handlers[format.FrameKindIntra.FrameSlot()] = frameHandler{parse: intraframeParse, complete: completeIntraframe}
	handlers[format.FrameKindInter.FrameSlot()] = frameHandler{parse: interframeParse, complete: completeInterframe}
	handlers[format.FrameKindGPS.FrameSlot()] = frameHandler{parse: gpsFrameParse, complete: completeGPSFrame}
	handlers[format.FrameKindGPSHome.FrameSlot()] = frameHandler{parse: gpsHomeFrameParse, complete: completeGPSHomeFrame}
	handlers[format.FrameKindEvent.FrameSlot()] = frameHandler{parse: eventFrameParse, complete: completeEventFrame}
}

func handlerFor(marker byte) (frameHandler, format.FrameKind, bool) {
	kind := format.FrameKind(marker)
	if !kind.Valid() {
		return frameHandler{}, 0, false
	}

	return handlers[kind.FrameSlot()], kind, true
}

// Parser decodes one session's header and binary frame stream at a
// time. A Parser owns all mutable decode state (history, statistics,
// header, last event) and resets it at the start of every Parse call;
// it is not safe for concurrent use by multiple goroutines, but two
// Parsers may run concurrently over independent sessions.
type Parser struct {
	header    *header.State
	ring      *history.MainRing
	home      history.HomeSlot
	lastGPS   history.LastSlot
	lastEvent EventRecord
	stats     *stats.Tracker

	recorder *diag.Recorder

	opts ParseOptions
}

// NewParser returns a Parser ready for its first Parse call.
func NewParser() *Parser {
	return &Parser{}
}

// AttachRecorder wires an optional diagnostic recorder that captures a
// bounded window of raw bytes around every corrupt frame this Parser
// encounters (package diag). A Parser with no recorder attached decodes
// identically; the recorder only observes.
func (p *Parser) AttachRecorder(r *diag.Recorder) {
	p.recorder = r
}

// Header returns the header state parsed by the most recent Parse call.
func (p *Parser) Header() *header.State {
	return p.header
}

// Stats returns the statistics accumulated by the most recent Parse call.
func (p *Parser) Stats() *stats.Tracker {
	return p.stats
}

// LastEvent returns the most recently decoded event frame, if any, from
// the most recent Parse call.
func (p *Parser) LastEvent() EventRecord {
	return p.lastEvent
}

func (p *Parser) reset() {
	p.header = header.NewState()
	p.ring = history.NewMainRing()
	p.home = history.HomeSlot{}
	p.lastGPS = history.LastSlot{}
	p.lastEvent = EventRecord{Kind: format.EventNone}
	p.stats = nil
}

func (p *Parser) decodeContext() decodeContext {
	var homeCoord0, homeCoord1 int32

	if pub, ok := p.home.Published(); ok {
		homeCoord0 = pub[0]
		homeCoord1 = pub[1]
	}

	return decodeContext{
		dataVersion: p.header.DataVersion,
		raw:         p.opts.Raw,
		minThrottle: p.header.Calibration.MinThrottle,
		vbatRef:     p.header.Calibration.VBatRef,
		motor0Index: p.header.Motor0Index,
		home0Index:  p.header.Home0Index,
		home1Index:  p.header.Home1Index,
		homeCoord0:  homeCoord0,
		homeCoord1:  homeCoord1,
	}
}

func (p *Parser) homeValid() bool {
	_, ok := p.home.Published()

	return ok
}

// emitFrame invokes the caller's frame callback, if set.
func (p *Parser) emitFrame(evt FrameEvent) {
	if p.opts.OnFrameReady != nil {
		evt.Session = p

		p.opts.OnFrameReady(evt)
	}
}

var errEmptySession = fmt.Errorf("data file contained no events")

// Parse decodes the session described by desc within data, using opts
// to configure callbacks and raw mode.
//
// It returns (true, nil) once the session's frame stream has been
// scanned to its end offset — successfully or otherwise; a stream
// riddled with corrupt frames still "completes" in the sense that the
// scan reached the end of the session's byte range, same as the
// original decoder's single boolean return. It returns (false, err)
// only for conditions that make decoding impossible to even attempt: an
// out-of-range session range, a data section reached with no field
// definitions, or a header-only session with no frames at all.
func (p *Parser) Parse(data []byte, desc SessionDescriptor, opts ParseOptions) (bool, error) {
	if desc.StartOffset < 0 || desc.EndOffset > int64(len(data)) || desc.StartOffset > desc.EndOffset {
		return false, fmt.Errorf("%w: session [%d,%d) outside input of length %d", errs.ErrSessionIndexOutOfRange, desc.StartOffset, desc.EndOffset, len(data))
	}

	p.reset()
	p.opts = opts

	sessionBytes := data[desc.StartOffset:desc.EndOffset]
	c := cursor.New(sessionBytes)

	state := stateHeader

	var (
		lastHandler  *frameHandler
		lastKind     format.FrameKind
		frameStart   int64
		prematureEOF bool
	)

	for {
		command, ok := c.ReadByte()

		switch state {
		case stateHeader:
			switch {
			case ok && command == 'H':
				line := readHeaderLine(c)
				p.header.ParseLine(line)
			case !ok:
				return false, fmt.Errorf("session %d: %w", desc.Index, errEmptySession)
			default:
				kind := format.FrameKind(command)
				if !kind.Valid() {
					// Garbage preceding the first data frame: skip silently.
					continue
				}

				if p.header.FrameDefs[0].Count == 0 {
					return false, errs.ErrNoFrameDefinitions
				}

				header.FinalizeHeader(p.header)
				p.stats = stats.NewTracker(p.header.FrameDefs[0].Count, p.header.FrameDefs[0].Signed[:p.header.FrameDefs[0].Count])

				c.UnreadByte()

				state = stateData

				if p.opts.OnMetadataReady != nil {
					p.opts.OnMetadataReady(p.header)
				}
			}
		case stateData:
			if lastHandler != nil {
				lastFrameSize := int64(c.Position()) - frameStart

				nextKind := format.FrameKind(0)

				var nextIsKnown bool

				if ok {
					nextKind = format.FrameKind(command)
					nextIsKnown = nextKind.Valid()
				}

				looksCompleted := nextIsKnown || (!ok && !prematureEOF)

				if lastFrameSize <= MaxFrameLength && looksCompleted {
					lastHandler.complete(p, frameStart, int64(c.Position()))
				} else {
					p.handleCorruptFrame(desc, sessionBytes, lastKind, frameStart, lastFrameSize)

					c.Seek(int(frameStart))
					lastHandler = nil
					prematureEOF = false

					continue
				}
			}

			if !ok {
				return true, nil
			}

			h, kind, known := handlerFor(command)
			frameStart = int64(c.Position())

			failedBefore := c.FailedReads()

			if known {
				if err := h.parse(p, c); err != nil {
					// A frame that fails to decode outright (a bad encoding
					// tag, a cross-field reference the header never
					// resolved, a read that ran off the end of the buffer
					// mid-field) is corruption local to this one frame, not
					// a reason to give up on the rest of the session: treat
					// it exactly like the lookahead resync path below,
					// rewinding to frameStart (one byte past the marker
					// that started it) so the next loop iteration resumes
					// its byte-by-byte search for the next valid marker.
					length := int64(c.Position()) - frameStart

					p.handleCorruptFrame(desc, sessionBytes, kind, frameStart, length)

					c.Seek(int(frameStart))
					lastHandler = nil
					prematureEOF = false

					continue
				}
			} else {
				p.ring.Invalidate()
			}

			// A read that actually ran out of data mid-parse implies this
			// frame was truncated. This is distinct from the cursor simply
			// sitting at the buffer's end because the last field read
			// consumed the final available byte: a legitimately complete
			// final frame never fails a read, so it must not be flagged
			// here (only the following iteration's own "is there a next
			// frame" read can fail, and by then this flag has already been
			// consulted for the frame completed by that iteration).
			if c.FailedReads() > failedBefore {
				prematureEOF = true
			}

			if known {
				lastHandler = &h
				lastKind = kind
			} else {
				lastHandler = nil
			}
		}
	}
}

// handleCorruptFrame accounts for a frame that failed its well-formedness
// check: invalidates the main stream, records it as corrupt, optionally
// captures it for diagnostics, and notifies the caller with no field
// pointer (spec.md §7 "Corrupt frame").
func (p *Parser) handleCorruptFrame(desc SessionDescriptor, sessionBytes []byte, kind format.FrameKind, frameStart, length int64) {
	p.stats.RecordCorrupt(kind, int(length))
	p.ring.Invalidate()

	if p.recorder != nil {
		end := frameStart + length
		if end > int64(len(sessionBytes)) {
			end = int64(len(sessionBytes))
		}

		if frameStart >= 0 && frameStart <= end {
			_ = p.recorder.Capture(desc.StartOffset+frameStart, byte(kind), sessionBytes[frameStart:end])
		}
	}

	p.emitFrame(FrameEvent{Valid: false, Fields: nil, Kind: kind, FieldCount: 0, Offset: frameStart, Length: length})
}

// readHeaderLine reads the remainder of a header line, the leading 'H'
// already consumed, up to but excluding the terminating newline, with
// the single space conventionally following 'H' stripped.
func readHeaderLine(c *cursor.Cursor) string {
	var line []byte

	for {
		b, ok := c.ReadByte()
		if !ok || b == '\n' {
			break
		}

		line = append(line, b)
	}

	if len(line) > 0 && line[0] == ' ' {
		line = line[1:]
	}

	return string(line)
}
