package editor

import (
	"math"

	"mapcore/pkg/geom"
)

// GridConfig describes the snapping grid overlaid on the world.
type GridConfig struct {
	Visible     bool    `json:"visible"`
	Spacing     float64 `json:"spacing"`
	Pattern     string  `json:"pattern"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	SnapEnabled bool    `json:"snap_enabled"`
}

// DefaultGridConfig returns a visible 32-unit dot grid with snapping on.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Visible:     true,
		Spacing:     32,
		Pattern:     "dots",
		Color:       "#888888",
		Opacity:     0.4,
		SnapEnabled: true,
	}
}

// Snap rounds p to the nearest grid intersection when snapping is enabled.
// Zero or negative spacing disables snapping.
func (g GridConfig) Snap(p geom.Point) geom.Point {
	if !g.SnapEnabled || g.Spacing <= 0 {
		return p
	}
	return geom.Pt(
		math.Round(p.X/g.Spacing)*g.Spacing,
		math.Round(p.Y/g.Spacing)*g.Spacing,
	)
}
