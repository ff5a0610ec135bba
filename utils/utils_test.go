package utils

import (
	"bytes"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMath_MinMax(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1, Min(1, 2))
	assert.Equal(1, Min(2, 1))
	assert.Equal(2, Max(1, 2))
	assert.Equal(2.5, Max(2.5, -1))
	assert.Equal(3, Abs(-3))
	assert.Equal(0.5, Abs(-0.5))
	assert.Equal(0, Clamp(-4, 0, 10))
	assert.Equal(10, Clamp(14, 0, 10))
	assert.Equal(0.3, Clamp(0.3, 0, 1))
}

func TestFormat_DecorateText(t *testing.T) {
	assert.Equal(t, ErrorColor+"failed"+DefaultColor, DecorateText("failed", ErrorMessage))
	assert.Equal(t, "plain", DecorateText("plain", MessageType(42)))
}

func TestFormat_FormatTime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{2*time.Minute + 3*time.Second, "2m 3.00s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3.00s"},
		{26*time.Hour + 4*time.Second, "1d 2h 0m 4.00s"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatTime(tc.d))
	}
}

func TestColor_HexToRGBA(t *testing.T) {
	c, err := HexToRGBA("#ffa500")
	assert.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}, c)

	c, err = HexToRGBA("00f")
	assert.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}, c)

	_, err = HexToRGBA("#12345")
	assert.Error(t, err)
	_, err = HexToRGBA("zzzzzz")
	assert.Error(t, err)
}

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("working", time.Millisecond, false)
	s.SetWriter(&buf)
	s.StopMsg = "done"

	s.Start()
	s.Start()
	s.Update("still working")
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	s.Stop()

	assert.True(t, strings.HasSuffix(buf.String(), "done"))
}
