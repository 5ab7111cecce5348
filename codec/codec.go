// Package codec implements the seven field wire encodings used by the
// blackbox frame format: the scalar varint codecs (SIGNED_VB,
// UNSIGNED_VB, NEG_14BIT) and the grouped, selector-driven codecs that
// pack several field values behind one leading tag byte (TAG8_4S16,
// TAG2_3S32, TAG8_8SVB).
//
// Every decoder here is grounded on the corresponding readXxx function
// in the original C parser, translated byte-for-byte into cursor reads
// and explicit sign-extension.
package codec

import (
	"fmt"

	"github.com/flightrec/blackbox/cursor"
	"github.com/flightrec/blackbox/endian"
	"github.com/flightrec/blackbox/errs"
	"github.com/flightrec/blackbox/format"
)

// leEngine reads the little-endian multi-byte lanes of TAG2_3S32 and of
// TAG8_4S16 version 1. TAG8_4S16 version 2 assembles its 16-bit lanes
// high byte first by hand (see readTag8_4S16V2).
var leEngine = endian.GetLittleEndianEngine()

// ReadUnsignedVB decodes a base-128 varint: each byte contributes 7 bits
// of payload, MSB set means "more bytes follow". At most 5 bytes are
// consumed (enough for 32 bits); an overlong encoding decodes as 0,
// matching the original parser's behavior rather than erroring.
func ReadUnsignedVB(c *cursor.Cursor) (uint32, error) {
	var result uint32

	for i := 0; i < 5; i++ {
		b, ok := c.ReadByte()
		if !ok {
			return 0, nil
		}

		result |= uint32(b&0x7f) << (7 * uint(i))

		if b < 128 {
			return result, nil
		}
	}

	return 0, nil
}

// ReadSignedVB decodes a zigzag-encoded signed varint.
func ReadSignedVB(c *cursor.Cursor) (int32, error) {
	u, err := ReadUnsignedVB(c)
	if err != nil {
		return 0, err
	}

	return int32(u>>1) ^ -int32(u&1), nil
}

// ReadNeg14Bit decodes a value stored as the negation of a 14-bit
// unsigned varint payload: read an unsigned varint, then negate and
// sign-extend it from 14 bits.
func ReadNeg14Bit(c *cursor.Cursor) (int32, error) {
	u, err := ReadUnsignedVB(c)
	if err != nil {
		return 0, err
	}

	return -signExtend(int32(u), 14), nil
}

// signExtend sign-extends the low `bits` bits of v to a full int32.
func signExtend(v int32, bits uint) int32 {
	shift := 32 - bits

	return (v << shift) >> shift
}

// GroupSize returns how many field slots a fixed-width grouped encoding
// consumes in one decode call: 4 for TAG8_4S16, 3 for TAG2_3S32, 1 for
// every scalar encoding. TAG8_8SVB is excluded: its lead byte groups
// between 1 and 8 consecutive same-encoding fields, a run length the
// frame parser determines itself by looking ahead at the field
// definition (ReadTag8_8SVB takes that count as a parameter), not
// something this function can answer from the encoding tag alone.
func GroupSize(enc format.FieldEncoding) int {
	switch enc {
	case format.EncodingTag8_4S16:
		return 4
	case format.EncodingTag2_3S32:
		return 3
	default:
		return 1
	}
}

// ReadTag2_3S32 decodes three signed values packed behind a lead byte
// whose top two bits select the per-slot width: 2 bits (all three taken
// from the lead byte), 4 bits (the first from the lead byte, the other
// two from one extra byte), 6 bits (one from the lead byte and one from
// each of two extra bytes), or (selector 3) 8/16/24/32-bit little-endian
// signed values whose widths come from the lead byte's low six bits, two
// bits per slot, lowest bits first.
func ReadTag2_3S32(c *cursor.Cursor) ([3]int32, error) {
	var values [3]int32

	lead, ok := c.ReadByte()
	if !ok {
		return values, errs.ErrEmptyInput
	}

	switch lead >> 6 {
	case 0:
		values[0] = signExtend(int32((lead>>4)&0x03), 2)
		values[1] = signExtend(int32((lead>>2)&0x03), 2)
		values[2] = signExtend(int32(lead&0x03), 2)
	case 1:
		values[0] = signExtend(int32(lead&0x0f), 4)

		next, ok := c.ReadByte()
		if !ok {
			return values, errs.ErrEmptyInput
		}

		values[1] = signExtend(int32(next>>4), 4)
		values[2] = signExtend(int32(next&0x0f), 4)
	case 2:
		values[0] = signExtend(int32(lead&0x3f), 6)

		b1, ok := c.ReadByte()
		if !ok {
			return values, errs.ErrEmptyInput
		}

		values[1] = signExtend(int32(b1&0x3f), 6)

		b2, ok := c.ReadByte()
		if !ok {
			return values, errs.ErrEmptyInput
		}

		values[2] = signExtend(int32(b2&0x3f), 6)
	case 3:
		selector := lead

		for i := 0; i < 3; i++ {
			v, err := readWidthSelected(c, selector&0x03)
			if err != nil {
				return values, err
			}

			values[i] = v
			selector >>= 2
		}
	}

	return values, nil
}

func readWidthSelected(c *cursor.Cursor, width byte) (int32, error) {
	switch width {
	case 0:
		b, ok := c.ReadByte()
		if !ok {
			return 0, errs.ErrEmptyInput
		}

		return int32(int8(b)), nil
	case 1:
		b, ok := c.ReadBytes(2)
		if !ok {
			return 0, errs.ErrEmptyInput
		}

		return int32(int16(leEngine.Uint16(b))), nil
	case 2:
		b, ok := c.ReadBytes(3)
		if !ok {
			return 0, errs.ErrEmptyInput
		}

		u := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16

		return signExtend(int32(u), 24), nil
	default:
		b, ok := c.ReadBytes(4)
		if !ok {
			return 0, errs.ErrEmptyInput
		}

		return int32(leEngine.Uint32(b)), nil
	}
}

// Tag8_4S16Version distinguishes the two historical byte layouts for
// TAG8_4S16, selected by the session's "Data version" header field.
type Tag8_4S16Version int

const (
	// Tag8_4S16V1 byte-aligns each packed 4-bit pair within its own byte.
	Tag8_4S16V1 Tag8_4S16Version = 1
	// Tag8_4S16V2 packs 4-bit values across a nibble boundary shared with
	// neighboring slots, tracked via a rolling nibble-index state machine.
	Tag8_4S16V2 Tag8_4S16Version = 2
)

// ReadTag8_4S16 decodes four signed values selected by a lead byte with
// four 2-bit lane codes (zero / 4-bit / 8-bit / 16-bit), using whichever
// historical byte layout the session's data version selects.
func ReadTag8_4S16(c *cursor.Cursor, version Tag8_4S16Version) ([4]int32, error) {
	if version == Tag8_4S16V2 {
		return readTag8_4S16V2(c)
	}

	return readTag8_4S16V1(c)
}

func readTag8_4S16V1(c *cursor.Cursor) ([4]int32, error) {
	var values [4]int32

	selector, ok := c.ReadByte()
	if !ok {
		return values, errs.ErrEmptyInput
	}

	for i := 0; i < 4; i++ {
		switch selector & 0x03 {
		case 0:
			values[i] = 0
		case 1:
			combined, ok := c.ReadByte()
			if !ok {
				return values, errs.ErrEmptyInput
			}

			values[i] = signExtend(int32(combined&0x0f), 4)
			i++
			selector >>= 2
			values[i] = signExtend(int32(combined>>4), 4)
		case 2:
			b, ok := c.ReadByte()
			if !ok {
				return values, errs.ErrEmptyInput
			}

			values[i] = int32(int8(b))
		case 3:
			b, ok := c.ReadBytes(2)
			if !ok {
				return values, errs.ErrEmptyInput
			}

			values[i] = int32(int16(leEngine.Uint16(b)))
		}

		selector >>= 2
	}

	return values, nil
}

func readTag8_4S16V2(c *cursor.Cursor) ([4]int32, error) {
	var values [4]int32

	selector, ok := c.ReadByte()
	if !ok {
		return values, errs.ErrEmptyInput
	}

	nibbleIndex := 0
	var buffer byte

	for i := 0; i < 4; i++ {
		switch selector & 0x03 {
		case 0:
			values[i] = 0
		case 1:
			if nibbleIndex == 0 {
				b, ok := c.ReadByte()
				if !ok {
					return values, errs.ErrEmptyInput
				}

				buffer = b
				values[i] = signExtend(int32(buffer>>4), 4)
				nibbleIndex = 1
			} else {
				values[i] = signExtend(int32(buffer&0x0f), 4)
				nibbleIndex = 0
			}
		case 2:
			if nibbleIndex == 0 {
				b, ok := c.ReadByte()
				if !ok {
					return values, errs.ErrEmptyInput
				}

				values[i] = int32(int8(b))
			} else {
				char1 := buffer << 4

				b, ok := c.ReadByte()
				if !ok {
					return values, errs.ErrEmptyInput
				}

				buffer = b
				char1 |= buffer >> 4
				values[i] = int32(int8(char1))
			}
		case 3:
			if nibbleIndex == 0 {
				b, ok := c.ReadBytes(2)
				if !ok {
					return values, errs.ErrEmptyInput
				}

				values[i] = int32(int16(uint16(b[0])<<8 | uint16(b[1])))
			} else {
				b, ok := c.ReadBytes(2)
				if !ok {
					return values, errs.ErrEmptyInput
				}

				values[i] = int32(int16(uint16(buffer)<<12 | uint16(b[0])<<4 | uint16(b[1])>>4))
				buffer = b[1]
			}
		}

		selector >>= 2
	}

	return values, nil
}

// ReadTag8_8SVB decodes a bitmask-selected group of up to 8 SIGNED_VB
// values. When count is 1, no header byte is present and a single
// SIGNED_VB is read directly; otherwise a header byte's bits, low to
// high, select which of the count slots carry a SIGNED_VB (the rest are
// zero).
func ReadTag8_8SVB(c *cursor.Cursor, count int) ([]int32, error) {
	values := make([]int32, count)

	if count == 1 {
		v, err := ReadSignedVB(c)
		if err != nil {
			return nil, err
		}

		values[0] = v

		return values, nil
	}

	header, ok := c.ReadByte()
	if !ok {
		return nil, errs.ErrEmptyInput
	}

	for i := 0; i < count; i++ {
		if header&0x01 != 0 {
			v, err := ReadSignedVB(c)
			if err != nil {
				return nil, err
			}

			values[i] = v
		}

		header >>= 1
	}

	return values, nil
}

// ErrUnknownEncoding wraps errs.ErrUnknownEncoding with the offending tag.
func ErrUnknownEncoding(enc format.FieldEncoding) error {
	return fmt.Errorf("%w: %s", errs.ErrUnknownEncoding, enc)
}
