// Package format defines the wire-level enumerations shared across the
// decoder: frame kinds, field encodings, field predictors, firmware
// variants and event kinds. Mirrors the flat enum-with-String() style
// used for EncodingType/CompressionType in the blob format this decoder
// was adapted from.
package format

// FrameKind identifies one of the five frame kinds by its single ASCII
// marker byte.
type FrameKind byte

const (
	FrameKindIntra   FrameKind = 'I' // keyframe
	FrameKindInter   FrameKind = 'P' // delta frame
	FrameKindGPS     FrameKind = 'G' // navigation
	FrameKindGPSHome FrameKind = 'H' // navigation-home
	FrameKindEvent   FrameKind = 'E' // discrete event
)

func (k FrameKind) String() string {
	switch k {
	case FrameKindIntra:
		return "I"
	case FrameKindInter:
		return "P"
	case FrameKindGPS:
		return "G"
	case FrameKindGPSHome:
		return "H"
	case FrameKindEvent:
		return "E"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is one of the five recognized frame kinds.
func (k FrameKind) Valid() bool {
	switch k {
	case FrameKindIntra, FrameKindInter, FrameKindGPS, FrameKindGPSHome, FrameKindEvent:
		return true
	default:
		return false
	}
}

// FrameSlot maps a FrameKind to a dense [0,5) index for table lookups,
// avoiding a 256-entry array indexed by raw marker byte.
func (k FrameKind) FrameSlot() int {
	switch k {
	case FrameKindIntra:
		return 0
	case FrameKindInter:
		return 1
	case FrameKindGPS:
		return 2
	case FrameKindGPSHome:
		return 3
	case FrameKindEvent:
		return 4
	default:
		return -1
	}
}

// FieldEncoding identifies the wire-level residual encoding of a field,
// or a group of fields for the grouped tags.
type FieldEncoding uint8

const (
	EncodingSignedVB FieldEncoding = iota
	EncodingUnsignedVB
	EncodingNeg14Bit
	EncodingTag8_4S16
	EncodingTag2_3S32
	EncodingTag8_8SVB
	EncodingNull
)

func (e FieldEncoding) String() string {
	switch e {
	case EncodingSignedVB:
		return "SIGNED_VB"
	case EncodingUnsignedVB:
		return "UNSIGNED_VB"
	case EncodingNeg14Bit:
		return "NEG_14BIT"
	case EncodingTag8_4S16:
		return "TAG8_4S16"
	case EncodingTag2_3S32:
		return "TAG2_3S32"
	case EncodingTag8_8SVB:
		return "TAG8_8SVB"
	case EncodingNull:
		return "NULL"
	default:
		return "Unknown"
	}
}

// FieldPredictor identifies the rule used to turn a decoded residual
// into an absolute field value.
type FieldPredictor uint8

const (
	PredictorZero FieldPredictor = iota
	PredictorPrevious
	PredictorStraightLine
	PredictorAverage2
	PredictorMinThrottle
	PredictorFixed1500
	PredictorVBatRef
	PredictorMotor0
	PredictorHomeCoord
	PredictorHomeCoord1 // synthesized during header finalization, never present on the wire
	PredictorIncrement
)

func (p FieldPredictor) String() string {
	switch p {
	case PredictorZero:
		return "ZERO"
	case PredictorPrevious:
		return "PREVIOUS"
	case PredictorStraightLine:
		return "STRAIGHT_LINE"
	case PredictorAverage2:
		return "AVERAGE_2"
	case PredictorMinThrottle:
		return "MINTHROTTLE"
	case PredictorFixed1500:
		return "FIXED_1500"
	case PredictorVBatRef:
		return "VBAT_REF"
	case PredictorMotor0:
		return "MOTOR_0"
	case PredictorHomeCoord:
		return "HOME_COORD"
	case PredictorHomeCoord1:
		return "HOME_COORD_1"
	case PredictorIncrement:
		return "INCREMENT"
	default:
		return "Unknown"
	}
}

// FirmwareType identifies the flight-controller firmware family that
// produced the log, which affects gyro.scale normalization.
type FirmwareType uint8

const (
	FirmwareBaseflight FirmwareType = iota
	FirmwareCleanflight
)

func (f FirmwareType) String() string {
	if f == FirmwareCleanflight {
		return "Cleanflight"
	}

	return "Baseflight"
}

// EventKind identifies the kind of a discrete event frame.
type EventKind int8

const (
	EventNone               EventKind = -1
	EventSyncBeep           EventKind = 0
	EventAutotuneCycleStart EventKind = 10
	EventAutotuneCycleResult EventKind = 11
)

func (e EventKind) String() string {
	switch e {
	case EventSyncBeep:
		return "SyncBeep"
	case EventAutotuneCycleStart:
		return "AutotuneCycleStart"
	case EventAutotuneCycleResult:
		return "AutotuneCycleResult"
	default:
		return "None"
	}
}
