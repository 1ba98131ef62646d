package noise

import (
	"math"
	"math/rand"
	"testing"
)

func TestGesturePointDensityScalesWithDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	controls := []Keystroke{{X: 0, Y: 0}, {X: 100, Y: 100}}
	dist := math.Hypot(100, 100)

	for i := 0; i < 20; i++ {
		path := makeSwipeGesture(rng, controls)
		if len(path) < int(dist*MinPointsPerDist) || len(path) > int(dist*MaxPointsPerDist) {
			t.Fatalf("path length %d outside [%d, %d]", len(path),
				int(dist*MinPointsPerDist), int(dist*MaxPointsPerDist))
		}
	}
}

func TestGestureSinglePointPassesThrough(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	path := makeSwipeGesture(rng, []Keystroke{{X: 5, Y: 5}})
	if len(path) != 1 || path[0] != (Keystroke{X: 5, Y: 5}) {
		t.Fatalf("single point should pass through, got %v", path)
	}
}

func TestGestureDedupesIdenticalPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	path := makeSwipeGesture(rng, []Keystroke{{X: 5, Y: 5}, {X: 5, Y: 5}})
	if len(path) != 1 {
		t.Fatalf("identical points collapse to one, got %d", len(path))
	}
}

func TestGestureTinyDistanceStillProducesPath(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	path := makeSwipeGesture(rng, []Keystroke{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if len(path) <= 2 {
		t.Fatalf("even tiny segments get a minimal path, got %d points", len(path))
	}
}

func TestGestureEndsAtControls(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	controls := []Keystroke{{X: 0, Y: 0}, {X: 50, Y: 10}, {X: 100, Y: 100}}
	path := makeSwipeGesture(rng, controls)

	if path[0] != controls[0] {
		t.Fatalf("path must start at the first control, got %v", path[0])
	}
	last := path[len(path)-1]
	if math.Abs(last.X-controls[2].X) > 1e-9 || math.Abs(last.Y-controls[2].Y) > 1e-9 {
		t.Fatalf("path must end at the last control, got %v", last)
	}
}
