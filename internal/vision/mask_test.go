package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fillRect(im *Image, x0, y0, w, h int, hue, sat, val uint8) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			im.SetHSV(x, y, hue, sat, val)
		}
	}
}

func TestHSVRangeWraps(t *testing.T) {
	assert.True(t, HSVRange{HueLow: 170, HueHigh: 10}.Wraps())
	assert.False(t, HSVRange{HueLow: 35, HueHigh: 85}.Wraps())
	assert.False(t, HSVRange{HueLow: 85, HueHigh: 85}.Wraps())
}

func TestInRangeSimpleBand(t *testing.T) {
	im := NewImage(10, 10)
	fillRect(im, 2, 2, 3, 3, 50, 200, 200)

	m := im.InRange(HSVRange{HueLow: 35, HueHigh: 85, SatLow: 120, SatHigh: 255, ValLow: 80, ValHigh: 255})
	assert.Equal(t, 9, m.Count())
	assert.Equal(t, uint8(1), m.At(3, 3))
	assert.Equal(t, uint8(0), m.At(0, 0))
}

func TestInRangeWrappingBand(t *testing.T) {
	im := NewImage(8, 1)
	// Hues on both sides of the wrap point plus some that must not match.
	im.SetHSV(0, 0, 175, 200, 200) // high side of the wrap
	im.SetHSV(1, 0, 5, 200, 200)   // low side of the wrap
	im.SetHSV(2, 0, 90, 200, 200)  // middle of the wheel, outside
	im.SetHSV(3, 0, 175, 50, 200)  // right hue, saturation too low

	r := HSVRange{HueLow: 170, HueHigh: 10, SatLow: 120, SatHigh: 255, ValLow: 100, ValHigh: 255}
	m := im.InRange(r)
	assert.Equal(t, uint8(1), m.At(0, 0))
	assert.Equal(t, uint8(1), m.At(1, 0))
	assert.Equal(t, uint8(0), m.At(2, 0))
	assert.Equal(t, uint8(0), m.At(3, 0))
}

func TestInRangeWrapEqualsUnionOfSubRanges(t *testing.T) {
	im := NewImage(180, 1)
	for h := 0; h < 180; h++ {
		im.SetHSV(h, 0, uint8(h), 255, 255)
	}

	full := HSVRange{SatLow: 0, SatHigh: 255, ValLow: 0, ValHigh: 255}

	wrap := full
	wrap.HueLow, wrap.HueHigh = 170, 10
	low := full
	low.HueLow, low.HueHigh = 0, 10
	high := full
	high.HueLow, high.HueHigh = 170, 179

	wrapped := im.InRange(wrap)
	lowMask := im.InRange(low)
	highMask := im.InRange(high)

	for i := range wrapped.Pix {
		union := lowMask.Pix[i] | highMask.Pix[i]
		assert.Equal(t, union, wrapped.Pix[i], "pixel %d", i)
	}
	assert.Equal(t, 21, wrapped.Count())
}

func TestOpenRemovesSpeckle(t *testing.T) {
	im := NewImage(32, 32)
	// One real blob and one isolated pixel of the same color.
	fillRect(im, 8, 8, 10, 10, 50, 200, 200)
	im.SetHSV(28, 28, 50, 200, 200)

	m := im.InRange(HSVRange{HueLow: 35, HueHigh: 85, SatLow: 120, SatHigh: 255, ValLow: 80, ValHigh: 255})
	assert.Equal(t, 101, m.Count())

	opened := m.Open(5)
	assert.Equal(t, uint8(0), opened.At(28, 28), "isolated pixel should be eroded away")
	assert.Equal(t, uint8(1), opened.At(12, 12), "blob interior should survive opening")
}

func TestCloseFillsHoles(t *testing.T) {
	m := NewMask(32, 32)
	for y := 8; y < 18; y++ {
		for x := 8; x < 18; x++ {
			m.Pix[y*m.Width+x] = 1
		}
	}
	// Punch a small hole inside the blob.
	m.Pix[12*m.Width+12] = 0

	closed := m.Close(5)
	assert.Equal(t, uint8(1), closed.At(12, 12), "closing should fill the interior hole")
}

func TestErodeBorderBlobSurvives(t *testing.T) {
	m := NewMask(16, 16)
	// Blob flush against the top-left corner.
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			m.Pix[y*m.Width+x] = 1
		}
	}

	opened := m.Open(5)
	assert.Equal(t, uint8(1), opened.At(0, 0), "border blobs are not eaten by erosion")
}
