package session

import (
	"github.com/flightrec/blackbox/codec"
	"github.com/flightrec/blackbox/cursor"
	"github.com/flightrec/blackbox/format"
)

// SyncBeep is the payload of a FLIGHT_LOG_EVENT_SYNC_BEEP event.
type SyncBeep struct {
	TimeUs uint32
}

// AutotuneCycleStart is the payload of a FLIGHT_LOG_EVENT_AUTOTUNE_CYCLE_START event.
type AutotuneCycleStart struct {
	Phase, Cycle, P, I, D byte
}

// AutotuneCycleResult is the payload of a FLIGHT_LOG_EVENT_AUTOTUNE_CYCLE_RESULT event.
type AutotuneCycleResult struct {
	Overshot, P, I, D byte
}

// EventRecord is one decoded event frame. Exactly one of the payload
// fields is populated, selected by Kind; an unrecognized on-wire event
// type decodes to Kind == format.EventNone with no payload, mirroring
// the original parser's "unknown event" sentinel rather than an error
// (an unrecognized event byte is not itself evidence of stream
// corruption).
type EventRecord struct {
	Kind format.EventKind

	SyncBeep           SyncBeep
	AutotuneCycleStart AutotuneCycleStart
	AutotuneCycleResult AutotuneCycleResult
}

// decodeEventFrame decodes the one-byte event-type tag plus its
// kind-specific payload.
func decodeEventFrame(c *cursor.Cursor) (EventRecord, error) {
	tag, ok := c.ReadByte()
	if !ok {
		return EventRecord{Kind: format.EventNone}, nil
	}

	switch format.EventKind(tag) {
	case format.EventSyncBeep:
		t, err := codec.ReadUnsignedVB(c)
		if err != nil {
			return EventRecord{}, err
		}

		return EventRecord{Kind: format.EventSyncBeep, SyncBeep: SyncBeep{TimeUs: t}}, nil
	case format.EventAutotuneCycleStart:
		b, ok := c.ReadBytes(5)
		if !ok {
			return EventRecord{Kind: format.EventNone}, nil
		}

		return EventRecord{
			Kind: format.EventAutotuneCycleStart,
			AutotuneCycleStart: AutotuneCycleStart{
				Phase: b[0], Cycle: b[1], P: b[2], I: b[3], D: b[4],
			},
		}, nil
	case format.EventAutotuneCycleResult:
		b, ok := c.ReadBytes(4)
		if !ok {
			return EventRecord{Kind: format.EventNone}, nil
		}

		return EventRecord{
			Kind: format.EventAutotuneCycleResult,
			AutotuneCycleResult: AutotuneCycleResult{
				Overshot: b[0], P: b[1], I: b[2], D: b[3],
			},
		}, nil
	default:
		return EventRecord{Kind: format.EventNone}, nil
	}
}
