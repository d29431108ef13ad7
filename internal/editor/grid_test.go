package editor

import (
	"testing"

	"mapcore/pkg/geom"
)

func TestGridSnap(t *testing.T) {
	g := GridConfig{Spacing: 10, SnapEnabled: true}
	cases := []struct {
		in, want geom.Point
	}{
		{geom.Pt(0, 0), geom.Pt(0, 0)},
		{geom.Pt(4, 4), geom.Pt(0, 0)},
		{geom.Pt(5, 5), geom.Pt(10, 10)},
		{geom.Pt(14.9, 15.1), geom.Pt(10, 20)},
		{geom.Pt(-4, -6), geom.Pt(-0, -10)},
	}
	for _, tc := range cases {
		if got := g.Snap(tc.in); got != tc.want {
			t.Fatalf("Snap(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestGridSnapDisabled(t *testing.T) {
	p := geom.Pt(7.3, 12.9)
	g := GridConfig{Spacing: 10, SnapEnabled: false}
	if got := g.Snap(p); got != p {
		t.Fatalf("disabled snap must be identity, got %+v", got)
	}
}

func TestGridSnapInvalidSpacingDisables(t *testing.T) {
	p := geom.Pt(7.3, 12.9)
	for _, spacing := range []float64{0, -5} {
		g := GridConfig{Spacing: spacing, SnapEnabled: true}
		if got := g.Snap(p); got != p {
			t.Fatalf("spacing %g must disable snapping, got %+v", spacing, got)
		}
	}
}
