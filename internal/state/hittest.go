package state

import "math"

// HitTolerance is added to half the stroke width when hit-testing, in pixels.
const HitTolerance = 5.0

// HitTest returns the topmost stroke on layer whose polyline lies within
// size/2 + HitTolerance pixels of p. Later strokes win. Strokes that render
// nothing are never hit.
func HitTest(strokes []Stroke, p Point, layer int, vp Viewport) (Stroke, bool) {
	px, py := vp.ToBuffer(p)
	for i := len(strokes) - 1; i >= 0; i-- {
		s := strokes[i]
		if s.LayerID != layer || !s.Renders() {
			continue
		}
		if DistanceToStroke(s, px, py, vp) <= s.Size/2+HitTolerance {
			return s, true
		}
	}
	return Stroke{}, false
}

// DistanceToStroke returns the minimum pixel distance from (px, py) to the
// stroke's polyline in buffer space.
func DistanceToStroke(s Stroke, px, py float64, vp Viewport) float64 {
	best := math.Inf(1)
	if len(s.Points) == 0 {
		return best
	}
	ax, ay := vp.ToBuffer(s.Points[0])
	if len(s.Points) == 1 {
		return math.Hypot(px-ax, py-ay)
	}
	for _, next := range s.Points[1:] {
		bx, by := vp.ToBuffer(next)
		if d := SegmentDistance(px, py, ax, ay, bx, by); d < best {
			best = d
		}
		ax, ay = bx, by
	}
	return best
}

// SegmentDistance is the distance from (px, py) to the segment a-b using a
// clamped parametric projection.
func SegmentDistance(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	t := 0.0
	if l2 > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / l2
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
