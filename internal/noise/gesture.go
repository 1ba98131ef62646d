package noise

import (
	"math"
	"math/rand"
)

// Bounds on the number of gesture points generated per unit of distance
// between two consecutive key centers.
const (
	MinPointsPerDist = 0.25
	MaxPointsPerDist = 0.5
)

// makeSwipeGesture interpolates a smooth finger path through the given key
// centers using Catmull-Rom segments. The point density of each segment
// scales with its length, jittered within the per-distance bounds.
func makeSwipeGesture(rng *rand.Rand, controls []Keystroke) []Keystroke {
	points := dedupeConsecutive(controls)
	if len(points) <= 1 {
		return points
	}

	var path []Keystroke
	for s := 0; s < len(points)-1; s++ {
		p1, p2 := points[s], points[s+1]
		p0, p3 := p1, p2
		if s > 0 {
			p0 = points[s-1]
		}
		if s+2 < len(points) {
			p3 = points[s+2]
		}

		d := math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
		n := int(d * (MinPointsPerDist + rng.Float64()*(MaxPointsPerDist-MinPointsPerDist)))
		if n < 3 {
			n = 3
		}

		start := 0
		if s > 0 {
			// Segment start coincides with the previous segment's end.
			start = 1
		}
		for j := start; j < n; j++ {
			t := float64(j) / float64(n-1)
			path = append(path, catmullRom(p0, p1, p2, p3, t))
		}
	}
	return path
}

// catmullRom evaluates a centripetal-style Catmull-Rom spline segment
// between p1 and p2 at parameter t in [0, 1].
func catmullRom(p0, p1, p2, p3 Keystroke, t float64) Keystroke {
	t2 := t * t
	t3 := t2 * t
	return Keystroke{
		X: 0.5 * ((2 * p1.X) +
			(-p0.X+p2.X)*t +
			(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
			(-p0.X+3*p1.X-3*p2.X+p3.X)*t3),
		Y: 0.5 * ((2 * p1.Y) +
			(-p0.Y+p2.Y)*t +
			(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
			(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3),
	}
}

func dedupeConsecutive(points []Keystroke) []Keystroke {
	var out []Keystroke
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
