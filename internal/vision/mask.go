package vision

// HSVRange selects pixels in HSV space. Bounds are inclusive and use the
// OpenCV byte convention (hue 0-179, sat/val 0-255). When HueLow > HueHigh
// the hue band wraps through 0 and selects the union of [0, HueHigh] and
// [HueLow, 179]; this models reds straddling the wrap point. Saturation and
// value bounds never wrap.
type HSVRange struct {
	HueLow  int `json:"hue_low"`
	HueHigh int `json:"hue_high"`
	SatLow  int `json:"sat_low"`
	SatHigh int `json:"sat_high"`
	ValLow  int `json:"val_low"`
	ValHigh int `json:"val_high"`
}

// Wraps reports whether the hue band wraps through 0.
func (r HSVRange) Wraps() bool {
	return r.HueLow > r.HueHigh
}

// Mask is a binary image. Pix holds 0 or 1 per pixel, row-major.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates a zeroed mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the mask value at (x, y); out-of-bounds reads are 0.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Pix[y*m.Width+x]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, p := range m.Pix {
		if p != 0 {
			n++
		}
	}
	return n
}

// InRange builds a binary mask of pixels inside r. A wrapping hue band is
// split into its two sub-ranges and the sub-masks are unioned.
func (im *Image) InRange(r HSVRange) *Mask {
	m := NewMask(im.Width, im.Height)
	for i := range im.H {
		if im.inRangeAt(i, r) {
			m.Pix[i] = 1
		}
	}
	return m
}

func (im *Image) inRangeAt(i int, r HSVRange) bool {
	s := int(im.S[i])
	if s < r.SatLow || s > r.SatHigh {
		return false
	}
	v := int(im.V[i])
	if v < r.ValLow || v > r.ValHigh {
		return false
	}
	h := int(im.H[i])
	if r.Wraps() {
		return h <= r.HueHigh || h >= r.HueLow
	}
	return h >= r.HueLow && h <= r.HueHigh
}

// Open performs morphological opening (erode then dilate) with a square
// kernel of the given size. Removes isolated speckle smaller than the kernel.
func (m *Mask) Open(kernel int) *Mask {
	return m.erode(kernel).dilate(kernel)
}

// Close performs morphological closing (dilate then erode) with a square
// kernel of the given size. Fills small gaps inside blobs.
func (m *Mask) Close(kernel int) *Mask {
	return m.dilate(kernel).erode(kernel)
}

func (m *Mask) erode(kernel int) *Mask {
	out := NewMask(m.Width, m.Height)
	r := kernel / 2
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.windowAll(x, y, r) {
				out.Pix[y*m.Width+x] = 1
			}
		}
	}
	return out
}

func (m *Mask) dilate(kernel int) *Mask {
	out := NewMask(m.Width, m.Height)
	r := kernel / 2
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.windowAny(x, y, r) {
				out.Pix[y*m.Width+x] = 1
			}
		}
	}
	return out
}

// windowAll reports whether every in-bounds pixel in the (2r+1)² window is
// set. Pixels outside the frame are treated as set so blobs touching the
// border are not eaten by erosion.
func (m *Mask) windowAll(cx, cy, r int) bool {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
				continue
			}
			if m.Pix[y*m.Width+x] == 0 {
				return false
			}
		}
	}
	return true
}

func (m *Mask) windowAny(cx, cy, r int) bool {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
				continue
			}
			if m.Pix[y*m.Width+x] != 0 {
				return true
			}
		}
	}
	return false
}
