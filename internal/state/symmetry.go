package state

// SymmetryMode mirrors authored points before they are rasterized.
type SymmetryMode uint8

const (
	SymmetryNone       SymmetryMode = iota // no mirroring
	SymmetryHorizontal                     // mirror left/right
	SymmetryVertical                       // mirror top/bottom
	SymmetryQuad                           // both axes
	SymmetryCentral                        // point reflection through the center
)

var symmetryNames = [...]string{"NONE", "HORIZONTAL", "VERTICAL", "QUAD", "CENTRAL"}

func (m SymmetryMode) String() string {
	if int(m) < len(symmetryNames) {
		return symmetryNames[m]
	}
	return "NONE"
}

// ParseSymmetry returns the mode named s, or SymmetryNone and false.
func ParseSymmetry(s string) (SymmetryMode, bool) {
	for i, name := range symmetryNames {
		if name == s {
			return SymmetryMode(i), true
		}
	}
	return SymmetryNone, false
}

type mirror struct{ flipX, flipY bool }

func (m SymmetryMode) mirrors() []mirror {
	switch m {
	case SymmetryHorizontal:
		return []mirror{{flipX: true}}
	case SymmetryVertical:
		return []mirror{{flipY: true}}
	case SymmetryQuad:
		return []mirror{{flipX: true}, {flipY: true}, {flipX: true, flipY: true}}
	case SymmetryCentral:
		return []mirror{{flipX: true, flipY: true}}
	default:
		return nil
	}
}

// Mirror returns the mirrored copies of points for mode, excluding the
// input itself. Reflection happens about the viewport center (0.5, 0.5).
func Mirror(points []Point, mode SymmetryMode) [][]Point {
	ms := mode.mirrors()
	if len(ms) == 0 {
		return nil
	}
	out := make([][]Point, 0, len(ms))
	for _, m := range ms {
		cp := make([]Point, len(points))
		for i, p := range points {
			if m.flipX {
				p.X = 1 - p.X
			}
			if m.flipY {
				p.Y = 1 - p.Y
			}
			cp[i] = p
		}
		out = append(out, cp)
	}
	return out
}

// MirrorStroke returns mirrored copies of s with empty IDs.
func MirrorStroke(s Stroke, mode SymmetryMode) []Stroke {
	sets := Mirror(s.Points, mode)
	out := make([]Stroke, 0, len(sets))
	for _, pts := range sets {
		c := s.Clone()
		c.ID = ""
		c.Points = pts
		out = append(out, c)
	}
	return out
}
