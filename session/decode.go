package session

import (
	"github.com/flightrec/blackbox/codec"
	"github.com/flightrec/blackbox/cursor"
	"github.com/flightrec/blackbox/format"
	"github.com/flightrec/blackbox/frame"
	"github.com/flightrec/blackbox/predictor"
)

// decodeContext bundles the calibration and cross-field state decodeFrame
// needs to resolve predictors, independent of which frame kind is being
// decoded.
type decodeContext struct {
	dataVersion int
	raw         bool

	minThrottle, vbatRef   int32
	motor0Index            int
	home0Index, home1Index int
	homeCoord0, homeCoord1 int32
}

// tag8_4S16Version picks the historical TAG8_4S16 byte layout selected
// by the session's "Data version" header field.
func (dc decodeContext) tag8_4S16Version() codec.Tag8_4S16Version {
	if dc.dataVersion < 2 {
		return codec.Tag8_4S16V1
	}

	return codec.Tag8_4S16V2
}

// decodeFrame decodes def.Count fields from c into current, predicting
// against previous/previous2 (either may be nil). skippedFrames feeds
// the INCREMENT predictor. It mirrors parseFrame in the original parser:
// most encodings decode and predict one field at a time, but the three
// grouped encodings (TAG8_4S16, TAG2_3S32, TAG8_8SVB) decode several
// raw values behind one lead byte and then apply each field's own
// predictor to its slot.
func decodeFrame(def *frame.Definition, c *cursor.Cursor, current, previous, previous2 *frame.Record, skippedFrames int, dc decodeContext) error {
	i := 0

	for i < def.Count {
		if def.Predictor[i] == format.PredictorIncrement {
			current[i] = predictor.ApplyIncrement(skippedFrames, previous, i)
			i++

			continue
		}

		switch def.Encoding[i] {
		case format.EncodingSignedVB:
			v, err := codec.ReadSignedVB(c)
			if err != nil {
				return err
			}

			if err := predictAndStore(def, current, previous, previous2, dc, i, v); err != nil {
				return err
			}

			i++
		case format.EncodingUnsignedVB:
			v, err := codec.ReadUnsignedVB(c)
			if err != nil {
				return err
			}

			if err := predictAndStore(def, current, previous, previous2, dc, i, int32(v)); err != nil {
				return err
			}

			i++
		case format.EncodingNeg14Bit:
			v, err := codec.ReadNeg14Bit(c)
			if err != nil {
				return err
			}

			if err := predictAndStore(def, current, previous, previous2, dc, i, v); err != nil {
				return err
			}

			i++
		case format.EncodingTag8_4S16:
			values, err := codec.ReadTag8_4S16(c, dc.tag8_4S16Version())
			if err != nil {
				return err
			}

			for j := 0; j < codec.GroupSize(format.EncodingTag8_4S16); j++ {
				if err := predictAndStore(def, current, previous, previous2, dc, i, values[j]); err != nil {
					return err
				}

				i++
			}
		case format.EncodingTag2_3S32:
			values, err := codec.ReadTag2_3S32(c)
			if err != nil {
				return err
			}

			for j := 0; j < codec.GroupSize(format.EncodingTag2_3S32); j++ {
				if err := predictAndStore(def, current, previous, previous2, dc, i, values[j]); err != nil {
					return err
				}

				i++
			}
		case format.EncodingTag8_8SVB:
			// codec.GroupSize doesn't cover this encoding: its run length
			// isn't fixed by the tag, so it's computed here by looking
			// ahead at how many consecutive fields share it.
			groupCount := 1
			for i+groupCount < def.Count && groupCount < 8 && def.Encoding[i+groupCount] == format.EncodingTag8_8SVB {
				groupCount++
			}

			values, err := codec.ReadTag8_8SVB(c, groupCount)
			if err != nil {
				return err
			}

			for j := 0; j < groupCount; j++ {
				if err := predictAndStore(def, current, previous, previous2, dc, i, values[j]); err != nil {
					return err
				}

				i++
			}
		case format.EncodingNull:
			if err := predictAndStore(def, current, previous, previous2, dc, i, 0); err != nil {
				return err
			}

			i++
		default:
			return codec.ErrUnknownEncoding(def.Encoding[i])
		}
	}

	return nil
}

// predictAndStore resolves field i's predictor (or PredictorZero when
// dc.raw is set, per spec.md "Raw mode") against value and stores the
// result into current[i].
func predictAndStore(def *frame.Definition, current, previous, previous2 *frame.Record, dc decodeContext, i int, value int32) error {
	id := def.Predictor[i]
	if dc.raw {
		id = format.PredictorZero
	}

	result, err := predictor.Apply(id, value, predictor.Refs{
		FieldIndex:  i,
		Signed:      def.Signed[i],
		Current:     current,
		Previous:    previous,
		Previous2:   previous2,
		MinThrottle: dc.minThrottle,
		VBatRef:     dc.vbatRef,
		Motor0Index: dc.motor0Index,
		Home0Index:  dc.home0Index,
		Home1Index:  dc.home1Index,
		HomeCoord0:  dc.homeCoord0,
		HomeCoord1:  dc.homeCoord1,
	})
	if err != nil {
		return err
	}

	current[i] = result

	return nil
}
