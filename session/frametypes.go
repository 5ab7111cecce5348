package session

import (
	"github.com/flightrec/blackbox/cursor"
	"github.com/flightrec/blackbox/format"
	"github.com/flightrec/blackbox/frame"
)

// intraframeParse decodes a keyframe into the main history ring's
// current slot. Grounded on parseIntraframe: previous2 is always nil
// for keyframes (a keyframe cannot look further back than itself), and
// the number of intentionally-skipped iterations is computed by
// walking the iteration-rate filter forward from the previous record's
// iteration count.
func intraframeParse(p *Parser, c *cursor.Cursor) error {
	current := p.ring.Current()
	previous, hasPrevious := p.ring.Previous()

	skipped := 0

	if hasPrevious {
		idx := int(previous[FieldIndexIteration]) + 1
		for !frame.ShouldHaveFrame(idx, p.header.IntervalI, p.header.PNum, p.header.PDenom) {
			skipped++
			idx++
		}

		p.stats.AddSkippedIterations(skipped)
	}

	return decodeFrame(&p.header.FrameDefs[0], c, current, previous, nil, skipped, p.decodeContext())
}

// interframeParse decodes a delta frame, predicting against both the
// previous and previous-previous main records.
func interframeParse(p *Parser, c *cursor.Cursor) error {
	current := p.ring.Current()
	previous, hasPrevious := p.ring.Previous()
	previous2, _ := p.ring.PreviousPrevious()

	skipped := 0

	if hasPrevious {
		idx := int(previous[FieldIndexIteration]) + 1
		for !frame.ShouldHaveFrame(idx, p.header.IntervalI, p.header.PNum, p.header.PDenom) {
			skipped++
			idx++
		}

		p.stats.AddSkippedIterations(skipped)
	}

	return decodeFrame(&p.header.FrameDefs[1], c, current, previous, previous2, skipped, p.decodeContext())
}

// gpsFrameParse decodes a navigation frame. GPS frames carry no
// multi-frame prediction context (spec.md §4.5): no previous record is
// passed.
func gpsFrameParse(p *Parser, c *cursor.Cursor) error {
	return decodeFrame(&p.header.FrameDefs[2], c, p.lastGPS.Current(), nil, nil, 0, p.decodeContext())
}

// gpsHomeFrameParse decodes a navigation-home frame into the
// not-yet-published slot; completeGPSHomeFrame publishes it
// unconditionally once decoding finishes.
func gpsHomeFrameParse(p *Parser, c *cursor.Cursor) error {
	return decodeFrame(&p.header.FrameDefs[3], c, p.home.Unpublished(), nil, nil, 0, p.decodeContext())
}

// eventFrameParse decodes one discrete event frame into the Parser's
// last-event slot.
func eventFrameParse(p *Parser, c *cursor.Cursor) error {
	rec, err := decodeEventFrame(c)
	if err != nil {
		return err
	}

	p.lastEvent = rec

	return nil
}

// completeIntraframe validates the just-decoded keyframe's iteration
// and timestamp against the highest values seen so far (raw mode skips
// the check entirely). A valid keyframe seeds/updates field statistics
// and rotates the history ring so both Previous and PreviousPrevious
// become this keyframe, since a keyframe is as far back as prediction
// can ever look. An invalid keyframe invalidates the main stream
// without rotating: Current will be overwritten by the next frame.
func completeIntraframe(p *Parser, frameStart, frameEnd int64) {
	current := p.ring.Current()
	count := p.header.FrameDefs[0].Count

	valid := p.opts.Raw || (p.stats.FieldAtLeast(FieldIndexIteration, current[FieldIndexIteration]) &&
		p.stats.FieldAtLeast(FieldIndexTime, current[FieldIndexTime]))

	p.stats.RecordFrame(format.FrameKindIntra, int(frameEnd-frameStart), current[:count], valid)

	if valid {
		p.ring.RotateKeyframe()
	} else {
		p.ring.Invalidate()
	}

	p.emitFrame(FrameEvent{
		Valid: valid, Fields: current, Kind: format.FrameKindIntra,
		FieldCount: count, Offset: frameStart, Length: frameEnd - frameStart,
	})
}

// completeInterframe folds a delta frame in. Per spec.md, a P-frame can
// never resynchronize an already-invalid stream on its own: its
// validity for statistics and the callback is simply whatever the main
// stream's carried-over validity already was.
func completeInterframe(p *Parser, frameStart, frameEnd int64) {
	current := p.ring.Current()
	count := p.header.FrameDefs[1].Count
	valid := p.ring.Valid()

	if valid {
		p.stats.RecordFrame(format.FrameKindInter, int(frameEnd-frameStart), current[:count], true)
		p.ring.RotateInterframe()
	} else {
		p.stats.RecordDesync(format.FrameKindInter, int(frameEnd-frameStart))
	}

	p.emitFrame(FrameEvent{
		Valid: valid, Fields: current, Kind: format.FrameKindInter,
		FieldCount: count, Offset: frameStart, Length: frameEnd - frameStart,
	})
}

// completeGPSFrame reports a navigation frame. Its validity is the
// published-home flag: a GPS frame decoded before any GPS-home frame
// has published is reported invalid, though it is still retained as the
// "last" GPS record.
func completeGPSFrame(p *Parser, frameStart, frameEnd int64) {
	current := p.lastGPS.Current()
	count := p.header.FrameDefs[2].Count
	valid := p.homeValid()

	p.lastGPS.Commit()
	p.stats.RecordFrame(format.FrameKindGPS, int(frameEnd-frameStart), nil, false)

	p.emitFrame(FrameEvent{
		Valid: valid, Fields: current, Kind: format.FrameKindGPS,
		FieldCount: count, Offset: frameStart, Length: frameEnd - frameStart,
	})
}

// completeGPSHomeFrame unconditionally publishes the decoded home
// position: once a GPS-home frame is well-formed enough to reach
// completion, it is always valid (spec.md §4.5).
func completeGPSHomeFrame(p *Parser, frameStart, frameEnd int64) {
	count := p.header.FrameDefs[3].Count

	p.home.Publish()
	p.stats.RecordFrame(format.FrameKindGPSHome, int(frameEnd-frameStart), nil, false)

	published, _ := p.home.Published()

	p.emitFrame(FrameEvent{
		Valid: true, Fields: published, Kind: format.FrameKindGPSHome,
		FieldCount: count, Offset: frameStart, Length: frameEnd - frameStart,
	})
}

// completeEventFrame reports a recognized event through the caller's
// OnEvent callback (not OnFrameReady), the delivery path for event
// payloads. An unrecognized on-wire event tag decodes to
// format.EventNone: it is not treated as corruption, and OnEvent is
// not called for it.
func completeEventFrame(p *Parser, frameStart, frameEnd int64) {
	p.stats.RecordFrame(format.FrameKindEvent, int(frameEnd-frameStart), nil, false)

	if p.opts.OnEvent != nil && p.lastEvent.Kind != format.EventNone {
		p.opts.OnEvent(p.lastEvent)
	}

	p.emitFrame(FrameEvent{
		Valid: true, Fields: nil, Kind: format.FrameKindEvent,
		FieldCount: 0, Offset: frameStart, Length: frameEnd - frameStart,
	})
}
