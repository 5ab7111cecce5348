// Package predictor implements the ten field predictors used to turn a
// decoded wire value into a field's actual value, by adding back
// whatever the encoder predicted and subtracted before transmission.
//
// Every predictor here is grounded on applyPrediction in the original C
// parser. Predictors that reference another field's current value
// (MOTOR_0) or the published GPS home position (HOME_COORD,
// HOME_COORD_1) call exit(-1) in the original when that reference is
// unresolved; here they return a structured error instead, since a
// library has no business terminating its caller's process.
package predictor

import (
	"github.com/flightrec/blackbox/errs"
	"github.com/flightrec/blackbox/format"
	"github.com/flightrec/blackbox/frame"
)

// Refs bundles the cross-field and cross-frame state a predictor may
// need beyond the field's own history. Fields not relevant to a given
// predictor are ignored.
type Refs struct {
	// FieldIndex is the index of the field being predicted within its frame.
	FieldIndex int
	// Signed reports whether the field is declared signed, which changes
	// AVERAGE_2's rounding behavior.
	Signed bool
	// Current is the frame under construction; Motor0 reads index 0 from it.
	Current *frame.Record
	// Previous and Previous2 are the prior two frames of the same kind, or
	// nil if unavailable (e.g. the first frame in a session).
	Previous, Previous2 *frame.Record
	// MinThrottle, VBatRef are header calibration constants.
	MinThrottle, VBatRef int32
	// Motor0Index is the index of "motor[0]" in the main field list, or -1
	// if that field was not defined.
	Motor0Index int
	// Home0Index, Home1Index are the indices of "GPS_home[0]"/"GPS_home[1]"
	// in the header's field list, or -1 if that field was not defined.
	Home0Index, Home1Index int
	// HomeCoord0, HomeCoord1 are the most recently published GPS home
	// latitude/longitude, or zero if no GPS-home frame has published yet.
	HomeCoord0, HomeCoord1 int32
}

// Apply adds the predictor's correction to a raw decoded value and
// returns the field's actual value. RawMode is handled by the caller
// (the frame parser) by passing format.PredictorZero regardless of the
// field's declared predictor, per spec.md "Raw mode".
func Apply(id format.FieldPredictor, value int32, refs Refs) (int32, error) {
	switch id {
	case format.PredictorZero:
		return value, nil
	case format.PredictorMinThrottle:
		return value + refs.MinThrottle, nil
	case format.PredictorFixed1500:
		return value + 1500, nil
	case format.PredictorVBatRef:
		return value + refs.VBatRef, nil
	case format.PredictorMotor0:
		if refs.Motor0Index < 0 {
			return 0, errs.ErrUnresolvedMotorReference
		}

		return value + refs.Current[refs.Motor0Index], nil
	case format.PredictorPrevious:
		if refs.Previous == nil {
			return value, nil
		}

		return value + refs.Previous[refs.FieldIndex], nil
	case format.PredictorStraightLine:
		if refs.Previous == nil || refs.Previous2 == nil {
			return value, nil
		}

		prev := refs.Previous[refs.FieldIndex]
		prev2 := refs.Previous2[refs.FieldIndex]

		return value + 2*prev - prev2, nil
	case format.PredictorAverage2:
		if refs.Previous == nil || refs.Previous2 == nil {
			return value, nil
		}

		prev := refs.Previous[refs.FieldIndex]
		prev2 := refs.Previous2[refs.FieldIndex]

		if refs.Signed {
			return value + (prev+prev2)/2, nil
		}

		return value + int32((uint32(prev)+uint32(prev2))/2), nil
	case format.PredictorHomeCoord:
		if refs.Home0Index < 0 {
			return 0, errs.ErrUnresolvedHomeReference
		}

		return value + refs.HomeCoord0, nil
	case format.PredictorHomeCoord1:
		if refs.Home1Index < 0 {
			return 0, errs.ErrUnresolvedHomeReference
		}

		return value + refs.HomeCoord1, nil
	default:
		return 0, errs.ErrUnknownPredictor
	}
}

// ApplyIncrement implements the INCREMENT predictor, which is handled
// outside the field's encoding entirely: the decoded value is ignored
// and the field instead becomes one more than skipped+previous.
func ApplyIncrement(skipped int, previous *frame.Record, fieldIndex int) int32 {
	v := int32(skipped) + 1
	if previous != nil {
		v += previous[fieldIndex]
	}

	return v
}
