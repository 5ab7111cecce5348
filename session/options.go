package session

import (
	"github.com/flightrec/blackbox/format"
	"github.com/flightrec/blackbox/frame"
	"github.com/flightrec/blackbox/header"
	"github.com/flightrec/blackbox/internal/options"
	"github.com/flightrec/blackbox/internal/pool"
)

// FrameEvent is delivered to a ParseOptions.OnFrameReady callback once
// per completed frame, valid or corrupt.
type FrameEvent struct {
	// Session is the Parser instance decoding this frame, for callbacks
	// that need to read back Parser.Header()/Stats().
	Session *Parser
	// Valid reports whether the frame passed its completion checks.
	// A corrupt frame always has Valid == false and Fields == nil.
	Valid bool
	// Fields is the frame's decoded field vector; it is nil only for a
	// corrupt frame. A well-formed frame judged invalid (a regressed
	// keyframe, a P frame while the stream is unsynchronized, a GPS frame
	// before any home frame) still carries its fields. It aliases the Parser's internal history slot: a callback
	// that needs to retain it past the callback's return must copy it
	// (e.g. via frame.Record's value-copy semantics, or pool.GetInt32Slice).
	Fields *frame.Record
	Kind   format.FrameKind
	// FieldCount is the number of semantically populated slots in Fields.
	FieldCount int
	// Offset is the frame's byte offset from the start of its session.
	Offset int64
	// Length is the frame's byte length, marker byte excluded.
	Length int64
}

// FieldsCopy returns a pooled copy of Fields[:FieldCount], safe to retain
// past the callback's return without pulling in a full frame.Record value
// copy. The returned cleanup func must be called once the slice is no
// longer needed to return it to the pool.
func (evt FrameEvent) FieldsCopy() ([]int32, func()) {
	slice, cleanup := pool.GetInt32Slice(evt.FieldCount)

	if evt.Fields != nil {
		copy(slice, evt.Fields[:evt.FieldCount])
	}

	return slice, cleanup
}

// FrameCallback receives one FrameEvent per completed frame.
type FrameCallback func(evt FrameEvent)

// EventCallback receives one EventRecord per completed event frame.
type EventCallback func(evt EventRecord)

// MetadataCallback fires once, at the HEADER-to-DATA transition, with
// the fully parsed header state.
type MetadataCallback func(st *header.State)

// ParseOptions configures one Parser.Parse call.
type ParseOptions struct {
	OnMetadataReady MetadataCallback
	OnFrameReady    FrameCallback
	OnEvent         EventCallback
	// Raw disables all predictors (every field behaves as PredictorZero),
	// per spec.md's "Raw mode".
	Raw bool
}

// ParseOption configures a ParseOptions via the functional-options
// pattern, backed by the shared internal/options package.
type ParseOption = options.Option[*ParseOptions]

// WithMetadataCallback sets the callback fired once headers finish parsing.
func WithMetadataCallback(cb MetadataCallback) ParseOption {
	return options.NoError(func(o *ParseOptions) { o.OnMetadataReady = cb })
}

// WithFrameCallback sets the callback fired once per completed frame.
func WithFrameCallback(cb FrameCallback) ParseOption {
	return options.NoError(func(o *ParseOptions) { o.OnFrameReady = cb })
}

// WithEventCallback sets the callback fired once per completed event frame.
func WithEventCallback(cb EventCallback) ParseOption {
	return options.NoError(func(o *ParseOptions) { o.OnEvent = cb })
}

// WithRaw disables predictor application, per spec.md's "Raw mode".
func WithRaw() ParseOption {
	return options.NoError(func(o *ParseOptions) { o.Raw = true })
}

// NewParseOptions builds a ParseOptions from functional options, for
// callers who prefer session.WithFrameCallback(...)-style construction
// over building a ParseOptions struct literal directly.
func NewParseOptions(opts ...ParseOption) (ParseOptions, error) {
	var o ParseOptions
	if err := options.Apply(&o, opts...); err != nil {
		return ParseOptions{}, err
	}

	return o, nil
}
