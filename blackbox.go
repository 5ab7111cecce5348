// Package blackbox decodes flight-controller blackbox logs: a
// line-oriented text header followed by a binary stream of keyframes,
// delta frames, navigation frames and discrete events, possibly with
// several sessions concatenated back to back in one file.
//
// This package provides convenient top-level wrappers around the
// session and header packages for the common "decode everything, give
// me slices back" use case. For streaming decode with callbacks, raw
// mode, or fine-grained control over which session to decode, use the
// session package directly.
//
// # Basic usage
//
//	sessions, err := blackbox.DecodeAll(data)
//	for _, s := range sessions {
//		fmt.Println(s.Header.Calibration.Firmware)
//		for _, f := range s.Frames {
//			if f.Valid {
//				fmt.Println(f.Kind, f.Fields)
//			}
//		}
//	}
package blackbox

import (
	"github.com/flightrec/blackbox/frame"
	"github.com/flightrec/blackbox/header"
	"github.com/flightrec/blackbox/session"
	"github.com/flightrec/blackbox/stats"
)

// DecodedFrame is one completed frame, with its field vector copied out
// of the decoder's internal history so it remains valid after decoding
// finishes (session.FrameEvent.Fields, by contrast, aliases internal
// state and is only safe to read from within the callback that receives
// it).
type DecodedFrame struct {
	Valid      bool
	Kind       byte
	Fields     frame.Record
	FieldCount int
	Offset     int64
	Length     int64
}

// DecodedSession is one session decoded in full: its header, every
// completed frame (valid or corrupt) in stream order, every discrete
// event, and the statistics accumulated along the way.
type DecodedSession struct {
	Descriptor session.SessionDescriptor
	Header     *header.State
	Frames     []DecodedFrame
	Events     []session.EventRecord
	Stats      *stats.Tracker
}

// DecodeOption configures DecodeAll/DecodeSession, re-exporting
// session.ParseOption so callers need not import the session package
// for the common case (raw mode being the only option likely to matter
// to a caller who isn't installing custom callbacks).
type DecodeOption = session.ParseOption

// WithRaw disables predictor application, reporting every field's bare
// decoded residual instead of its predicted absolute value.
func WithRaw() DecodeOption {
	return session.WithRaw()
}

// DecodeAll enumerates every session in data and decodes each one in
// full, collecting its frames and events into slices rather than
// delivering them through callbacks.
func DecodeAll(data []byte, opts ...DecodeOption) ([]DecodedSession, error) {
	descriptors, err := session.EnumerateSessions(data)
	if err != nil {
		return nil, err
	}

	results := make([]DecodedSession, 0, len(descriptors))

	for _, desc := range descriptors {
		decoded, err := DecodeSession(data, desc, opts...)
		if err != nil {
			return nil, err
		}

		results = append(results, decoded)
	}

	return results, nil
}

// DecodeSession decodes the single session described by desc, a
// building block for callers that have already run EnumerateSessions
// themselves (e.g. to pick one session out of a large file without
// decoding the rest).
func DecodeSession(data []byte, desc session.SessionDescriptor, opts ...DecodeOption) (DecodedSession, error) {
	base, err := session.NewParseOptions(opts...)
	if err != nil {
		return DecodedSession{}, err
	}

	result := DecodedSession{Descriptor: desc}

	// DecodeSession always collects frames/events into result: any
	// OnFrameReady/OnEvent passed in opts would only ever be overwritten
	// here, so session.WithFrameCallback/WithEventCallback have no effect
	// through this API. Use the session package directly for streaming.
	base.OnFrameReady = func(evt session.FrameEvent) {
		df := DecodedFrame{
			Valid:      evt.Valid,
			Kind:       byte(evt.Kind),
			FieldCount: evt.FieldCount,
			Offset:     evt.Offset,
			Length:     evt.Length,
		}

		if evt.Fields != nil {
			df.Fields = *evt.Fields
		}

		result.Frames = append(result.Frames, df)
	}

	base.OnEvent = func(evt session.EventRecord) {
		result.Events = append(result.Events, evt)
	}

	p := session.NewParser()

	if _, err := p.Parse(data, desc, base); err != nil {
		return DecodedSession{}, err
	}

	result.Header = p.Header()
	result.Stats = p.Stats()

	return result, nil
}
