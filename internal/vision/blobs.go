package vision

// Blob is one connected region of a binary mask with its zeroth and
// first-order image moments reduced to area and centroid.
type Blob struct {
	// Area is the zeroth moment (set pixel count) of the region.
	Area float64

	// CentroidX, CentroidY are the first-order moments divided by the area.
	CentroidX float64
	CentroidY float64
}

// Blobs extracts external connected regions (8-connectivity) from the mask,
// discarding regions with area <= minArea and degenerate regions whose
// zeroth moment is zero. Order of the returned blobs is unspecified.
func (m *Mask) Blobs(minArea float64) []Blob {
	visited := make([]bool, len(m.Pix))
	var blobs []Blob

	// Reused scratch stack for the flood fill.
	stack := make([]int, 0, 256)

	for start, p := range m.Pix {
		if p == 0 || visited[start] {
			continue
		}

		var m00, m10, m01 float64
		stack = stack[:0]
		stack = append(stack, start)
		visited[start] = true

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x := i % m.Width
			y := i / m.Width
			m00++
			m10 += float64(x)
			m01 += float64(y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
						continue
					}
					ni := ny*m.Width + nx
					if m.Pix[ni] != 0 && !visited[ni] {
						visited[ni] = true
						stack = append(stack, ni)
					}
				}
			}
		}

		if m00 <= minArea || m00 == 0 {
			continue
		}
		blobs = append(blobs, Blob{
			Area:      m00,
			CentroidX: m10 / m00,
			CentroidY: m01 / m00,
		})
	}
	return blobs
}
