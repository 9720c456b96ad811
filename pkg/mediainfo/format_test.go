package mediainfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFrameRateLike(t *testing.T) {
	tests := []struct {
		value float64
		unit  string
		want  string
	}{
		{29.97, UnitFPS, "29.97 fps"},
		{30000.0 / 1001.0, UnitFPS, "29.97 fps"},
		{25.0, UnitFPS, "25 fps"},
		{23.976, UnitFPS, "23.98 fps"},
		{90000.0, UnitTBN, "90k tbn"},
		{1200.0, UnitTBN, "1200 tbn"},
		{100000.0, UnitTBC, "100k tbc"},
		{50.0, UnitTBC, "50 tbc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFrameRateLike(tt.value, tt.unit))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "01:02:03.45", FormatDuration(372345, 100))
	assert.Equal(t, "01:02:03.45", FormatDuration(3723450000, TimeBase))
	assert.Equal(t, "00:00:00.00", FormatDuration(0, TimeBase))
	assert.Equal(t, "100:00:00.99", FormatDuration(360000*TimeBase+999999, TimeBase))
	assert.Equal(t, NotAvailable, FormatDuration(NoValue, TimeBase))
}

func TestFormatStartTime(t *testing.T) {
	assert.Equal(t, "00:00:01.50", FormatStartTime(1500000, TimeBase))
	assert.Equal(t, "00:00:00.02", FormatStartTime(-20000, TimeBase))
	assert.Equal(t, "00:00:-1.50", FormatStartTime(-1500000, TimeBase))
	assert.Equal(t, NotAvailable, FormatStartTime(NoValue, TimeBase))
}

func TestFormatBitrate(t *testing.T) {
	assert.Equal(t, "128 kb/s", FormatBitrate(128000))
	assert.Equal(t, "128 kb/s", FormatBitrate(128999))
	assert.Equal(t, "0 kb/s", FormatBitrate(999))
	assert.Equal(t, NotAvailable, FormatBitrate(0))
}

func TestFormatAspectRatio(t *testing.T) {
	par, dar, ok := FormatAspectRatio(Rational{1, 1}, 1920, 1080)
	assert.True(t, ok)
	assert.Equal(t, "1:1", par)
	assert.Equal(t, "16:9", dar)

	par, dar, ok = FormatAspectRatio(Rational{16, 15}, 720, 576)
	assert.True(t, ok)
	assert.Equal(t, "16:15", par)
	assert.Equal(t, "4:3", dar)

	_, _, ok = FormatAspectRatio(Rational{0, 1}, 720, 576)
	assert.False(t, ok)
	_, _, ok = FormatAspectRatio(Rational{1, 1}, 720, 0)
	assert.False(t, ok)
}

func TestFormatCodecTag(t *testing.T) {
	assert.Equal(t, "atca / 0x61637461", FormatCodecTag(0x61637461))
	assert.Equal(t, "avc1 / 0x31637661", FormatCodecTag(0x31637661))
	assert.Equal(t, "[1][0][0][0] / 0x0001", FormatCodecTag(1))
	assert.Equal(t, "[0][0][0][0] / 0x0000", FormatCodecTag(0))
}

func TestFormatMisc(t *testing.T) {
	assert.Equal(t, "48000 Hz", FormatSampleRate(48000))
	assert.Equal(t, "(eng)", FormatLanguage("eng"))
}
