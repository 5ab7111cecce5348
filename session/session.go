// Package session implements the frame dispatcher and resync state
// machine: enumerating concatenated sessions within an input region,
// and decoding one session's header and binary frame stream into
// callback-delivered records.
//
// Grounded on flightLogCreate (session enumeration) and flightLogParse
// (the HEADER/DATA state machine) in the original C parser.
package session

import (
	"bytes"
	"fmt"

	"github.com/flightrec/blackbox/errs"
)

// LogStartMarker is the ASCII line that begins every session.
const LogStartMarker = "H Product:Blackbox flight data recorder by Nicholas Sherlock\n"

// MaxSessionsInFile bounds how many sessions EnumerateSessions will
// report before giving up, mirroring FLIGHT_LOG_MAX_LOGS_IN_FILE.
const MaxSessionsInFile = 32

// MaxFrameLength bounds the byte length a single frame (marker byte
// excluded) may occupy before the dispatcher gives up calling it
// well-formed and declares it corrupt. The original source references
// a MAX_FRAME_LENGTH constant in its frame-completion check but its
// definition is not present in the retrieved parser sources; this value
// is chosen generously (the widest frame is a 128-field keyframe with
// every field raw-encoded at 4 bytes, plus slack) rather than copied
// from an unavailable header.
const MaxFrameLength = 2048

// SessionDescriptor identifies one session's byte range within an
// input region, plus a fingerprint of its raw header bytes.
type SessionDescriptor struct {
	Index       int
	StartOffset int64
	EndOffset   int64
	// HeaderHash is the xxHash64 fingerprint of the session's raw header
	// bytes (from StartOffset through the first non-header byte). It lets
	// a caller cheaply recognize "have I already decoded a session with
	// this exact header" without re-running header parsing. It carries no
	// decoding semantics: two sessions with colliding hashes still decode
	// independently and correctly.
	HeaderHash uint64
}

// EnumerateSessions scans data for session start markers and returns
// one SessionDescriptor per session found, in order, each spanning from
// its start marker to the next session's start marker (or the end of
// data). It returns ErrTooManySessions if more than MaxSessionsInFile
// markers are found, and ErrEmptyInput if data is empty.
func EnumerateSessions(data []byte) ([]SessionDescriptor, error) {
	if len(data) == 0 {
		return nil, errs.ErrEmptyInput
	}

	marker := []byte(LogStartMarker)

	var starts []int64

	searchFrom := 0

	for {
		idx := bytes.Index(data[searchFrom:], marker)
		if idx < 0 {
			break
		}

		starts = append(starts, int64(searchFrom+idx))

		if len(starts) > MaxSessionsInFile {
			return nil, errs.ErrTooManySessions
		}

		searchFrom += idx + len(marker)
	}

	descriptors := make([]SessionDescriptor, len(starts))

	for i, start := range starts {
		end := int64(len(data))
		if i+1 < len(starts) {
			end = starts[i+1]
		}

		descriptors[i] = SessionDescriptor{
			Index:       i,
			StartOffset: start,
			EndOffset:   end,
			HeaderHash:  headerHash(data[start:end]),
		}
	}

	return descriptors, nil
}

// resolveDescriptor validates idx against a previously enumerated
// descriptor list, returning a wrapped ErrSessionIndexOutOfRange if it
// is not a valid index.
func resolveDescriptor(descriptors []SessionDescriptor, idx int) (SessionDescriptor, error) {
	if idx < 0 || idx >= len(descriptors) {
		return SessionDescriptor{}, fmt.Errorf("%w: index %d, have %d sessions", errs.ErrSessionIndexOutOfRange, idx, len(descriptors))
	}

	return descriptors[idx], nil
}

// ParseSession enumerates data's sessions and decodes the one at idx, a
// convenience wrapper around EnumerateSessions, resolveDescriptor and
// Parser.Parse for callers that only want one session out of a
// multi-session file.
func ParseSession(data []byte, idx int, opts ParseOptions) (bool, error) {
	descriptors, err := EnumerateSessions(data)
	if err != nil {
		return false, err
	}

	desc, err := resolveDescriptor(descriptors, idx)
	if err != nil {
		return false, err
	}

	return NewParser().Parse(data, desc, opts)
}
