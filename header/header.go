// Package header parses the line-oriented "H key:value" header block
// that precedes a session's binary frame stream, and derives the
// calibration constants and field-index bindings the session decoder
// needs to interpret that stream.
//
// Header parsing is grounded on parseHeaderLine in the original C
// parser: one dispatch branch per recognized key, malformed lines
// silently dropped, integer fields parsed with the C equivalent of
// atoi's "parse what you can, stop at the first non-digit" behavior.
package header

import (
	"math"
	"strconv"
	"strings"

	"github.com/flightrec/blackbox/format"
	"github.com/flightrec/blackbox/frame"
)

// Calibration holds the numeric constants a session's header may
// override, seeded with the original firmware's documented defaults.
type Calibration struct {
	MinThrottle, MaxThrottle               int32
	RCRate                                 int32
	VBatScale, VBatRef                     int32
	VBatMinCell, VBatWarnCell, VBatMaxCell int32
	GyroScale                              float32
	Acc1G                                  int32
	Firmware                               format.FirmwareType
}

// DefaultCalibration returns the documented firmware defaults a new
// session starts from before any header line overrides them.
func DefaultCalibration() Calibration {
	return Calibration{
		MinThrottle:  1150,
		MaxThrottle:  1850,
		VBatRef:      4095,
		VBatScale:    110,
		VBatMinCell:  33,
		VBatWarnCell: 35,
		VBatMaxCell:  43,
		Firmware:     format.FirmwareBaseflight,
	}
}

// State is the full set of header-derived facts needed to decode a
// session's frame stream: field definitions per kind, field-name
// tables, frame-rate parameters, calibration, and resolved cross-field
// indices.
type State struct {
	FrameDefs   [5]frame.Definition
	FieldNames  [5][]string
	DataVersion int
	IntervalI   int
	PNum, PDenom int
	Calibration Calibration

	// Motor0Index is the index of "motor[0]" within the main (I/P) field
	// list, or -1 if that field was never named.
	Motor0Index int
	// Home0Index, Home1Index are the indices of "GPS_home[0]"/"GPS_home[1]"
	// within the GPS-home field list, or -1 if unresolved.
	Home0Index, Home1Index int
}

// NewState returns a State reset to session start: documented
// calibration defaults, I=32/P=1/1, and no resolved field indices.
func NewState() *State {
	return &State{
		IntervalI:   32,
		PNum:        1,
		PDenom:      1,
		Calibration: DefaultCalibration(),
		Motor0Index: -1,
		Home0Index:  -1,
		Home1Index:  -1,
	}
}

// ParseLine applies one "key:value" header line to st. Malformed lines
// (no separator) are silently ignored, matching the original decoder's
// tolerance for header noise.
func (st *State) ParseLine(line string) {
	sep := strings.IndexByte(line, ':')
	if sep < 0 {
		return
	}

	key := line[:sep]
	value := line[sep+1:]

	if handler, ok := keyHandlers[key]; ok {
		handler(st, value)

		return
	}

	if handler, slot, ok := fieldVectorHandler(key); ok {
		handler(st, slot, value)
	}
}

// atoiLenient parses the longest valid leading integer in s, mirroring
// C's atoi: unparseable input yields 0 rather than an error.
func atoiLenient(s string) int {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	start := end

	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	if end == start {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}

	return n
}

func parseCommaInts(s string, out []int32) {
	parts := strings.Split(s, ",")

	for i := 0; i < len(out) && i < len(parts); i++ {
		out[i] = int32(atoiLenient(parts[i]))
	}
}

func parseFieldNames(value string) []string {
	if value == "" {
		return nil
	}

	return strings.Split(value, ",")
}

var keyHandlers = map[string]func(*State, string){
	"Field I name": func(st *State, v string) {
		names := parseFieldNames(v)
		st.FieldNames[0] = names
		st.FrameDefs[0].Count = len(names)

		st.Motor0Index = -1

		for i, n := range names {
			if n == "motor[0]" {
				st.Motor0Index = i

				break
			}
		}
	},
	"Field G name": func(st *State, v string) {
		names := parseFieldNames(v)
		st.FieldNames[2] = names
		st.FrameDefs[2].Count = len(names)
	},
	"Field H name": func(st *State, v string) {
		names := parseFieldNames(v)
		st.FieldNames[3] = names
		st.FrameDefs[3].Count = len(names)

		st.Home0Index = -1
		st.Home1Index = -1

		for i, n := range names {
			switch n {
			case "GPS_home[0]":
				st.Home0Index = i
			case "GPS_home[1]":
				st.Home1Index = i
			}
		}
	},
	"Field I signed": func(st *State, v string) {
		parts := strings.Split(v, ",")

		for i := 0; i < frame.FieldCap && i < len(parts); i++ {
			st.FrameDefs[0].Signed[i] = atoiLenient(parts[i]) != 0
		}
	},
	"I interval": func(st *State, v string) {
		n := atoiLenient(v)
		if n < 1 {
			n = 1
		}

		st.IntervalI = n
	},
	"P interval": func(st *State, v string) {
		if slash := strings.IndexByte(v, '/'); slash >= 0 {
			st.PNum = atoiLenient(v[:slash])
			st.PDenom = atoiLenient(v[slash+1:])
		}
	},
	"Data version": func(st *State, v string) {
		st.DataVersion = atoiLenient(v)
	},
	"Firmware type": func(st *State, v string) {
		if strings.TrimSpace(v) == "Cleanflight" {
			st.Calibration.Firmware = format.FirmwareCleanflight
		} else {
			st.Calibration.Firmware = format.FirmwareBaseflight
		}
	},
	"minthrottle": func(st *State, v string) { st.Calibration.MinThrottle = int32(atoiLenient(v)) },
	"maxthrottle": func(st *State, v string) { st.Calibration.MaxThrottle = int32(atoiLenient(v)) },
	"rcRate":      func(st *State, v string) { st.Calibration.RCRate = int32(atoiLenient(v)) },
	"vbatscale":   func(st *State, v string) { st.Calibration.VBatScale = int32(atoiLenient(v)) },
	"vbatref":     func(st *State, v string) { st.Calibration.VBatRef = int32(atoiLenient(v)) },
	"vbatcellvoltage": func(st *State, v string) {
		var cells [3]int32
		parseCommaInts(v, cells[:])
		st.Calibration.VBatMinCell = cells[0]
		st.Calibration.VBatWarnCell = cells[1]
		st.Calibration.VBatMaxCell = cells[2]
	},
	"gyro.scale": func(st *State, v string) {
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

		bits, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return
		}

		scale := math.Float32frombits(uint32(bits))

		if st.Calibration.Firmware == format.FirmwareCleanflight {
			scale = float32(float64(scale) * (math.Pi / 180.0) * 0.000001)
		}

		st.Calibration.GyroScale = scale
	},
	"acc_1G": func(st *State, v string) { st.Calibration.Acc1G = int32(atoiLenient(v)) },
}

// fieldVectorHandler recognizes "Field X predictor"/"Field X encoding"
// keys, where X is one of I/P/G/H, and returns a handler plus the
// kind's frame slot.
func fieldVectorHandler(key string) (func(*State, int, string), int, bool) {
	const prefix = "Field "

	if !strings.HasPrefix(key, prefix) {
		return nil, 0, false
	}

	rest := key[len(prefix):]
	if len(rest) < 2 {
		return nil, 0, false
	}

	kindByte := rest[0]

	var slot int

	switch kindByte {
	case 'I':
		slot = 0
	case 'P':
		slot = 1
	case 'G':
		slot = 2
	case 'H':
		slot = 3
	default:
		return nil, 0, false
	}

	suffix := rest[1:]

	switch suffix {
	case " predictor":
		return func(st *State, slot int, v string) {
			parts := strings.Split(v, ",")

			for i := 0; i < frame.FieldCap && i < len(parts); i++ {
				st.FrameDefs[slot].Predictor[i] = format.FieldPredictor(atoiLenient(parts[i]))
			}
		}, slot, true
	case " encoding":
		return func(st *State, slot int, v string) {
			parts := strings.Split(v, ",")

			for i := 0; i < frame.FieldCap && i < len(parts); i++ {
				st.FrameDefs[slot].Encoding[i] = format.FieldEncoding(atoiLenient(parts[i]))
			}
		}, slot, true
	default:
		return nil, 0, false
	}
}

// FinalizeHeader performs the two fixups the original decoder applies
// once the header block is complete, before the first data frame is
// parsed:
//
//   - P frames have no "Field P name"/"Field P signed" header lines of
//     their own: they describe the same physical fields as the I frame,
//     just with their own predictor/encoding choices, so the field
//     count and signedness declared for I are copied onto P.
//   - GPS-home predictors appear in lat/lon pairs sharing the same
//     on-wire predictor ID, so the second of each consecutive pair is
//     rewritten to HOME_COORD_1 to let the predictor engine tell them
//     apart.
func FinalizeHeader(st *State) {
	st.FrameDefs[1].Count = st.FrameDefs[0].Count
	st.FrameDefs[1].Signed = st.FrameDefs[0].Signed

	gps := &st.FrameDefs[2]

	for i := 1; i < gps.Count; i++ {
		if gps.Predictor[i-1] == format.PredictorHomeCoord && gps.Predictor[i] == format.PredictorHomeCoord {
			gps.Predictor[i] = format.PredictorHomeCoord1
		}
	}
}

// VBatToMillivolts converts a raw 12-bit ADC battery-voltage reading
// into millivolts, using the session's vbatscale calibration (a 3.3V
// reference pre-scaled by 100).
func VBatToMillivolts(v uint16, vbatscale int32) uint32 {
	return uint32(v) * 330 * uint32(vbatscale) / 4095
}

// EstimateNumCells returns the smallest cell count n in [1,7] for which
// the calibrated vbatref reading would not exceed n cells at the
// configured max-per-cell voltage, defaulting to 7 if no such n exists.
func (c Calibration) EstimateNumCells() int {
	mv := VBatToMillivolts(uint16(c.VBatRef), c.VBatScale) / 100

	for n := int32(1); n <= 7; n++ {
		if mv < n*c.VBatMaxCell {
			return int(n)
		}
	}

	return 7
}
