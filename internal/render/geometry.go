package render

// Rect is a crop rectangle normalized to the source frame: all fields
// are fractions in [0,1] where (X, Y) is the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// minExtent keeps crop dimensions strictly positive so aspect-ratio
// math never divides by zero.
const minExtent = 1e-6

// FullFrame is the default crop when the caller supplied none.
func FullFrame() Rect {
	return Rect{X: 0, Y: 0, W: 1, H: 1}
}

// Clamp forces the rectangle into the unit square. Values are clamped,
// never rejected: X and Y land in [0,1], then W and H are capped so the
// rect stays inside the frame after offsetting.
func (r Rect) Clamp() Rect {
	r.X = clamp01(r.X)
	r.Y = clamp01(r.Y)
	r.W = clamp01(r.W)
	r.H = clamp01(r.H)
	r.W = clampRange(r.W, minExtent, 1-r.X)
	r.H = clampRange(r.H, minExtent, 1-r.Y)
	return r
}

// Aspect returns the width/height ratio of the crop, floored to a small
// epsilon so degenerate rects cannot produce a division fault upstream.
func (r Rect) Aspect() float64 {
	if r.H <= 0 {
		return minExtent
	}
	a := r.W / r.H
	if a <= 0 {
		return minExtent
	}
	return a
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// evenSplit divides total into two even parts where the first part is
// as close to want as the parity constraint allows. The second part
// absorbs any rounding residue so the sum is always exactly total.
// total must itself be even.
func evenSplit(total, want int) (int, int) {
	if want < 2 {
		want = 2
	}
	if want > total-2 {
		want = total - 2
	}
	want -= want % 2
	return want, total - want
}
