// Package vision provides the minimal image machinery the marker engine
// needs: HSV frames, range masks with hue wraparound, square-kernel
// morphology, and connected-component blob extraction with image moments.
package vision

import (
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// Image is a frame in HSV planes using the OpenCV byte convention:
// hue in [0, 179], saturation and value in [0, 255]. Planes are row-major
// with index y*Width+x.
type Image struct {
	Width  int
	Height int
	H      []uint8
	S      []uint8
	V      []uint8
}

// NewImage allocates a zeroed HSV image.
func NewImage(width, height int) *Image {
	n := width * height
	return &Image{
		Width:  width,
		Height: height,
		H:      make([]uint8, n),
		S:      make([]uint8, n),
		V:      make([]uint8, n),
	}
}

// SetHSV writes one pixel. Out-of-bounds coordinates are ignored.
func (im *Image) SetHSV(x, y int, h, s, v uint8) {
	if x < 0 || y < 0 || x >= im.Width || y >= im.Height {
		return
	}
	i := y*im.Width + x
	im.H[i] = h
	im.S[i] = s
	im.V[i] = v
}

// FromImage converts a decoded image to HSV planes.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r16, g16, b16, _ := src.At(x, y).RGBA()
			h, s, v := rgbToHSV(uint8(r16>>8), uint8(g16>>8), uint8(b16>>8))
			out.H[i] = h
			out.S[i] = s
			out.V[i] = v
			i++
		}
	}
	return out
}

// DecodeFrame decodes a base64-encoded JPEG or PNG frame, tolerating an
// optional data-URL prefix, and converts it to HSV planes.
func DecodeFrame(data string) (*Image, error) {
	if idx := strings.IndexByte(data, ','); idx >= 0 {
		data = data[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("frame is not valid base64: %w", err)
	}
	img, _, err := image.Decode(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame image: %w", err)
	}
	return FromImage(img), nil
}

// rgbToHSV converts one 8-bit RGB pixel to the OpenCV HSV byte ranges.
func rgbToHSV(r, g, b uint8) (uint8, uint8, uint8) {
	rf := float64(r)
	gf := float64(g)
	bf := float64(b)

	max := rf
	if gf > max {
		max = gf
	}
	if bf > max {
		max = bf
	}
	min := rf
	if gf < min {
		min = gf
	}
	if bf < min {
		min = bf
	}
	delta := max - min

	v := max
	var s float64
	if max > 0 {
		s = 255 * delta / max
	}

	var hDeg float64
	switch {
	case delta == 0:
		hDeg = 0
	case max == rf:
		hDeg = 60 * (gf - bf) / delta
	case max == gf:
		hDeg = 120 + 60*(bf-rf)/delta
	default:
		hDeg = 240 + 60*(rf-gf)/delta
	}
	if hDeg < 0 {
		hDeg += 360
	}

	// Halve to fit the 0-179 byte range.
	h := hDeg / 2
	if h > 179 {
		h = 179
	}
	return uint8(h + 0.5), uint8(s + 0.5), uint8(v + 0.5)
}
