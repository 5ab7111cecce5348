package header

import (
	"math"
	"testing"

	"github.com/flightrec/blackbox/format"
	"github.com/stretchr/testify/require"
)

func TestNewState_Defaults(t *testing.T) {
	st := NewState()

	require.Equal(t, 32, st.IntervalI)
	require.Equal(t, 1, st.PNum)
	require.Equal(t, 1, st.PDenom)
	require.Equal(t, -1, st.Motor0Index)
	require.Equal(t, -1, st.Home0Index)
	require.Equal(t, -1, st.Home1Index)

	c := st.Calibration
	require.Equal(t, int32(1150), c.MinThrottle)
	require.Equal(t, int32(1850), c.MaxThrottle)
	require.Equal(t, int32(4095), c.VBatRef)
	require.Equal(t, int32(110), c.VBatScale)
	require.Equal(t, int32(33), c.VBatMinCell)
	require.Equal(t, int32(35), c.VBatWarnCell)
	require.Equal(t, int32(43), c.VBatMaxCell)
	require.Equal(t, format.FirmwareBaseflight, c.Firmware)
}

func TestParseLine_FieldNamesAndMotor0(t *testing.T) {
	st := NewState()
	st.ParseLine("Field I name:loopIteration,time,motor[0],motor[1]")

	require.Equal(t, []string{"loopIteration", "time", "motor[0]", "motor[1]"}, st.FieldNames[0])
	require.Equal(t, 2, st.Motor0Index)
	require.Equal(t, 4, st.FrameDefs[0].Count)
}

func TestParseLine_GPSHomeIndices(t *testing.T) {
	st := NewState()
	st.ParseLine("Field H name:GPS_home[0],GPS_home[1]")

	require.Equal(t, 0, st.Home0Index)
	require.Equal(t, 1, st.Home1Index)
}

func TestParseLine_Intervals(t *testing.T) {
	st := NewState()
	st.ParseLine("I interval:16")
	require.Equal(t, 16, st.IntervalI)

	st.ParseLine("P interval:2/3")
	require.Equal(t, 2, st.PNum)
	require.Equal(t, 3, st.PDenom)

	t.Run("I interval below 1 clamps to 1", func(t *testing.T) {
		st := NewState()
		st.ParseLine("I interval:0")
		require.Equal(t, 1, st.IntervalI)
	})

	t.Run("malformed P interval without slash is ignored", func(t *testing.T) {
		st := NewState()
		st.ParseLine("P interval:garbage")
		require.Equal(t, 1, st.PNum)
		require.Equal(t, 1, st.PDenom)
	})
}

func TestParseLine_FirmwareType(t *testing.T) {
	st := NewState()
	st.ParseLine("Firmware type:Cleanflight")
	require.Equal(t, format.FirmwareCleanflight, st.Calibration.Firmware)

	st2 := NewState()
	st2.ParseLine("Firmware type:Baseflight")
	require.Equal(t, format.FirmwareBaseflight, st2.Calibration.Firmware)

	st3 := NewState()
	st3.ParseLine("Firmware type:SomethingElse")
	require.Equal(t, format.FirmwareBaseflight, st3.Calibration.Firmware)
}

func TestParseLine_VBatCellVoltage(t *testing.T) {
	st := NewState()
	st.ParseLine("vbatcellvoltage:33,35,43")

	require.Equal(t, int32(33), st.Calibration.VBatMinCell)
	require.Equal(t, int32(35), st.Calibration.VBatWarnCell)
	require.Equal(t, int32(43), st.Calibration.VBatMaxCell)
}

func TestParseLine_GyroScale(t *testing.T) {
	t.Run("baseflight keeps raw scale", func(t *testing.T) {
		st := NewState()
		st.ParseLine("gyro.scale:3727c5ac")

		bits := uint32(0x3727c5ac)
		want := math.Float32frombits(bits)
		require.InDelta(t, float64(want), float64(st.Calibration.GyroScale), 1e-12)
	})

	t.Run("cleanflight normalizes to baseflight convention", func(t *testing.T) {
		raw := math.Float32frombits(0x3727c5ac)

		baseflight := NewState()
		baseflight.ParseLine("gyro.scale:3727c5ac")

		cleanflight := NewState()
		cleanflight.ParseLine("Firmware type:Cleanflight")
		cleanflight.ParseLine("gyro.scale:3727c5ac")

		want := float32(float64(raw) * (math.Pi / 180.0) * 0.000001)
		require.InDelta(t, float64(want), float64(cleanflight.Calibration.GyroScale), 1e-12)
		require.NotEqual(t, baseflight.Calibration.GyroScale, cleanflight.Calibration.GyroScale)
	})

	t.Run("order matters: firmware type must be parsed before gyro.scale", func(t *testing.T) {
		// This mirrors the original header's line ordering convention: Firmware
		// type always precedes gyro.scale in real logs.
		st := NewState()
		st.ParseLine("gyro.scale:3727c5ac")
		st.ParseLine("Firmware type:Cleanflight")

		// Normalization already happened against Baseflight at parse time, so a
		// firmware line arriving afterward does not retroactively renormalize.
		raw := math.Float32frombits(0x3727c5ac)
		require.InDelta(t, float64(raw), float64(st.Calibration.GyroScale), 1e-12)
	})
}

func TestParseLine_PredictorAndEncodingVectors(t *testing.T) {
	st := NewState()
	st.ParseLine("Field I predictor:0,1,2")
	st.ParseLine("Field I encoding:1,0,3")

	require.Equal(t, format.PredictorZero, st.FrameDefs[0].Predictor[0])
	require.Equal(t, format.PredictorPrevious, st.FrameDefs[0].Predictor[1])
	require.Equal(t, format.PredictorStraightLine, st.FrameDefs[0].Predictor[2])

	require.Equal(t, format.EncodingUnsignedVB, st.FrameDefs[0].Encoding[0])
	require.Equal(t, format.EncodingSignedVB, st.FrameDefs[0].Encoding[1])
	require.Equal(t, format.EncodingTag8_4S16, st.FrameDefs[0].Encoding[2])
}

func TestParseLine_MalformedLineSilentlyDropped(t *testing.T) {
	st := NewState()
	require.NotPanics(t, func() {
		st.ParseLine("no colon in this line")
	})
}

func TestParseLine_UnrecognizedKeyIgnored(t *testing.T) {
	st := NewState()
	require.NotPanics(t, func() {
		st.ParseLine("Some Unknown Key:value")
	})
}

func TestFinalizeHeader_HomeCoordPairRewrite(t *testing.T) {
	st := NewState()
	st.FrameDefs[2].Count = 4
	st.FrameDefs[2].Predictor[0] = format.PredictorHomeCoord
	st.FrameDefs[2].Predictor[1] = format.PredictorHomeCoord
	st.FrameDefs[2].Predictor[2] = format.PredictorZero
	st.FrameDefs[2].Predictor[3] = format.PredictorHomeCoord

	FinalizeHeader(st)

	require.Equal(t, format.PredictorHomeCoord, st.FrameDefs[2].Predictor[0])
	require.Equal(t, format.PredictorHomeCoord1, st.FrameDefs[2].Predictor[1], "second of a consecutive pair becomes HOME_COORD_1")
	require.Equal(t, format.PredictorZero, st.FrameDefs[2].Predictor[2])
	require.Equal(t, format.PredictorHomeCoord, st.FrameDefs[2].Predictor[3], "a lone HOME_COORD with no preceding pair stays HOME_COORD")
}

func TestVBatToMillivolts(t *testing.T) {
	// 4095 raw, scale 110 (as pre-multiplied by 100) -> full-scale reading
	mv := VBatToMillivolts(4095, 110)
	require.Equal(t, uint32(4095)*330*110/4095, mv)
}

func TestEstimateNumCells(t *testing.T) {
	t.Run("default calibration resolves within [1,7]", func(t *testing.T) {
		c := DefaultCalibration()
		n := c.EstimateNumCells()
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 7)
	})

	t.Run("falls back to 7 when vbatref implies more cells than that", func(t *testing.T) {
		c := DefaultCalibration()
		c.VBatRef = 4095
		c.VBatMaxCell = 1 // absurdly low per-cell max forces no n in [1,7] to satisfy the test

		require.Equal(t, 7, c.EstimateNumCells())
	})
}
