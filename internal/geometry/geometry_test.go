package geometry

import (
	"math"
	"testing"

	"github.com/hylla/prioritas/internal/domain"
)

const tolerance = 1e-9

func testDims() Dimensions {
	return Dimensions{
		Width:  120,
		Height: 40,
		Padding: Insets{
			Top:    2,
			Right:  4,
			Bottom: 2,
			Left:   4,
		},
	}
}

func TestToPixelsCorners(t *testing.T) {
	d := testDims()
	cases := []struct {
		pos  domain.Position
		want Point
	}{
		{domain.Position{X: 0, Y: 0}, Point{X: 4, Y: 2}},
		{domain.Position{X: 1, Y: 1}, Point{X: 116, Y: 38}},
		{domain.Position{X: 0.5, Y: 0.5}, Point{X: 60, Y: 20}},
	}
	for _, tc := range cases {
		got := ToPixels(tc.pos, d)
		if math.Abs(got.X-tc.want.X) > tolerance || math.Abs(got.Y-tc.want.Y) > tolerance {
			t.Fatalf("ToPixels(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	d := testDims()
	positions := []domain.Position{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: 0.5, Y: 0.5},
		{X: 0.123, Y: 0.876},
		{X: 0.999, Y: 0.001},
	}
	for _, pos := range positions {
		back := ToNormalized(ToPixels(pos, d), d)
		if math.Abs(back.X-pos.X) > tolerance || math.Abs(back.Y-pos.Y) > tolerance {
			t.Fatalf("round trip drifted: %v -> %v", pos, back)
		}
	}
}

func TestToNormalizedClampsOutside(t *testing.T) {
	d := testDims()
	got := ToNormalized(Point{X: -50, Y: 500}, d)
	if got != (domain.Position{X: 0, Y: 1}) {
		t.Fatalf("expected clamped position, got %v", got)
	}
}

func TestDegenerateDimensions(t *testing.T) {
	cases := []Dimensions{
		{},
		{Width: 10, Height: 10, Padding: Insets{Left: 5, Right: 5}},
		{Width: -3, Height: 8},
	}
	for _, d := range cases {
		if !d.Degenerate() {
			t.Fatalf("expected %v to be degenerate", d)
		}
		pt := ToPixels(domain.Position{X: 0.3, Y: 0.7}, d)
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			t.Fatalf("degenerate mapping produced %v", pt)
		}
		if got := ToNormalized(Point{X: 3, Y: 3}, d); got != domain.CenterPosition() {
			t.Fatalf("expected center fallback, got %v", got)
		}
	}
}

func TestToPixelsSanitizesInput(t *testing.T) {
	d := testDims()
	got := ToPixels(domain.Position{X: math.NaN(), Y: 2}, d)
	want := ToPixels(domain.Position{X: 0.5, Y: 1}, d)
	if got != want {
		t.Fatalf("expected sanitized mapping %v, got %v", want, got)
	}
}
