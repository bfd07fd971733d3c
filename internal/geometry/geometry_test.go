package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAngleOrderIsDxDy(t *testing.T) {
	// moving purely along +x should report angle pi/2, per atan2(dx, dy).
	got := Angle(Point{0, 0}, Point{1, 0})
	if !almostEqual(got, math.Pi/2) {
		t.Fatalf("angle(+x) = %v, want pi/2", got)
	}
	// moving purely along +y should report angle 0.
	got = Angle(Point{0, 0}, Point{0, 1})
	if !almostEqual(got, 0) {
		t.Fatalf("angle(+y) = %v, want 0", got)
	}
}

func TestAngleIsModTwoPi(t *testing.T) {
	got := Angle(Point{0, 0}, Point{0, -1})
	if got < 0 || got >= 2*math.Pi {
		t.Fatalf("angle %v not in [0, 2pi)", got)
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Point{0, 0}, Point{3, 4}); !almostEqual(d, 5) {
		t.Fatalf("distance = %v, want 5", d)
	}
}

func TestMoveWrappedNoWrap(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	p := MoveWrapped(Point{0.5, 0.5}, math.Pi/2, 0.1, f)
	if !almostEqual(p.X, 0.6) || !almostEqual(p.Y, 0.5) {
		t.Fatalf("move = %+v, want (0.6, 0.5)", p)
	}
}

func TestMoveWrappedAcrossEdge(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	p := MoveWrapped(Point{1.9, 0}, math.Pi/2, 0.2, f)
	if !almostEqual(p.X, 0.1) {
		t.Fatalf("wrapped x = %v, want 0.1", p.X)
	}
}

func TestMoveWrappedZeroDistanceIsNoOp(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	p := MoveWrapped(Point{0.37, 1.21}, 1.2345, 0, f)
	if !almostEqual(p.X, 0.37) || !almostEqual(p.Y, 1.21) {
		t.Fatalf("zero-distance move should be a no-op, got %+v", p)
	}
}

func TestModWrapsWidthToZero(t *testing.T) {
	// modular arithmetic must wrap x == W to 0.
	if got := mod(2.0, 2.0); !almostEqual(got, 0) {
		t.Fatalf("mod(W, W) = %v, want 0", got)
	}
}

func TestWrappedRadiusDirect(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	translate, ok := WrappedRadius(f, Point{0, 0}, Point{0.05, 0}, 0.1)
	if !ok {
		t.Fatalf("expected containment")
	}
	if !almostEqual(translate.X, 0.05) || !almostEqual(translate.Y, 0) {
		t.Fatalf("translate = %+v, want (0.05, 0)", translate)
	}
}

func TestWrappedRadiusAcrossSeam(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	// point near the far edge is close to the origin via wraparound.
	translate, ok := WrappedRadius(f, Point{0, 0}, Point{1.95, 0}, 0.3)
	if !ok {
		t.Fatalf("expected wrapped containment")
	}
	if !almostEqual(translate.X, -0.05) {
		t.Fatalf("translate.X = %v, want -0.05 (short wrapped path)", translate.X)
	}
	if got := Distance(Point{0, 0}, translate); !almostEqual(got, 0.05) {
		t.Fatalf("wrapped distance = %v, want 0.05", got)
	}
}

func TestWrappedRadiusOutOfRange(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	_, ok := WrappedRadius(f, Point{0, 0}, Point{1, 1}, 0.1)
	if ok {
		t.Fatalf("expected no containment")
	}
}

func TestGenerateWrappedBoundsNoSpillover(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	target := Rect{X1: 0.5, Y1: 0.5, X2: 0.7, Y2: 0.7}
	rects := GenerateWrappedBounds(f, target)
	if len(rects) != 1 {
		t.Fatalf("expected 1 rect for a fully-interior target, got %d", len(rects))
	}
	if rects[0] != target {
		t.Fatalf("rect = %+v, want unchanged target %+v", rects[0], target)
	}
}

func TestGenerateWrappedBoundsEdgeSpillover(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	target := Rect{X1: -0.1, Y1: 0.5, X2: 0.1, Y2: 0.7}
	rects := GenerateWrappedBounds(f, target)
	if len(rects) != 2 {
		t.Fatalf("expected 2 rects for single-edge spillover, got %d: %+v", len(rects), rects)
	}
	for _, r := range rects {
		if r.X1 < 0 || r.X2 > f.Width || r.Y1 < 0 || r.Y2 > f.Height {
			t.Fatalf("rect %+v not fully inside field", r)
		}
	}
}

func TestGenerateWrappedBoundsCornerSpillover(t *testing.T) {
	f := Field{Width: 2, Height: 2}
	target := Rect{X1: -0.1, Y1: -0.1, X2: 0.1, Y2: 0.1}
	rects := GenerateWrappedBounds(f, target)
	if len(rects) != 4 {
		t.Fatalf("expected 4 rects for corner spillover, got %d: %+v", len(rects), rects)
	}

	// the union, sampled on a fine grid, must equal the wrapped image of target.
	for _, x := range []float64{-0.1, -0.05, 0, 0.05, 1.95, 1.99} {
		for _, y := range []float64{-0.1, -0.05, 0, 0.05, 1.95, 1.99} {
			wx, wy := mod(x, f.Width), mod(y, f.Height)
			inTarget := mod(wx-target.X1, f.Width) < target.X2-target.X1 && mod(wy-target.Y1, f.Height) < target.Y2-target.Y1
			covered := false
			for _, r := range rects {
				if r.Contains(Point{wx, wy}) {
					covered = true
					break
				}
			}
			if inTarget != covered {
				t.Fatalf("point (%v,%v) wrapped to (%v,%v): in target=%v covered=%v", x, y, wx, wy, inTarget, covered)
			}
		}
	}
}
