// Package errs defines the sentinel errors returned by the decoder.
//
// Callers should use errors.Is against these sentinels rather than
// comparing error strings; every non-trivial error returned by this
// module wraps one of these with fmt.Errorf("%w: ...") to add context.
package errs

import "errors"

var (
	// ErrUnresolvedMotorReference is returned when a MOTOR_0 predictor is
	// evaluated but the header never resolved a "motor[0]" field index.
	ErrUnresolvedMotorReference = errors.New("motor[0] predictor used without a resolved motor0 index")

	// ErrUnresolvedHomeReference is returned when a HOME_COORD or
	// HOME_COORD_1 predictor is evaluated but the header never resolved
	// the corresponding "GPS_home[n]" field index.
	ErrUnresolvedHomeReference = errors.New("home-coordinate predictor used without a resolved home index")

	// ErrUnknownEncoding is returned when a frame definition names a field
	// encoding tag this decoder does not recognize.
	ErrUnknownEncoding = errors.New("unknown field encoding tag")

	// ErrUnknownPredictor is returned when a frame definition names a
	// predictor tag this decoder does not recognize.
	ErrUnknownPredictor = errors.New("unknown field predictor tag")

	// ErrNoFrameDefinitions is returned when the data phase is reached
	// without ever having seen a "Field I name" header line.
	ErrNoFrameDefinitions = errors.New("data section reached without field name definitions")

	// ErrTooManySessions is returned by EnumerateSessions when the input
	// contains more session start markers than MaxSessionsInFile.
	ErrTooManySessions = errors.New("file contains more sessions than the configured maximum")

	// ErrSessionIndexOutOfRange is returned by Parse when the requested
	// session index is not within the bounds of the enumerated sessions.
	ErrSessionIndexOutOfRange = errors.New("session index out of range")

	// ErrEmptyInput is returned by EnumerateSessions when given a
	// zero-length input region.
	ErrEmptyInput = errors.New("input region is empty")
)
