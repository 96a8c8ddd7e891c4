package chart

import (
	"image/color"

	"dataviewer/pkg/dataview"
)

// DefaultTooltipThreshold is the squared pixel distance under which a point
// is considered hovered.
const DefaultTooltipThreshold = 200.0

// DrawOptions tunes a draw pass.
type DrawOptions struct {
	TooltipThreshold float64
	Palette          []color.RGBA
}

// DefaultDrawOptions returns the options used when nothing is configured.
func DefaultDrawOptions() DrawOptions {
	return DrawOptions{TooltipThreshold: DefaultTooltipThreshold, Palette: Palette1}
}

// Chart is a drawing strategy for one document type.
type Chart interface {
	Type() dataview.Type
	// View returns the autoview rectangle of file.
	View(file *dataview.File, margin float64) ViewRect
	// Draw renders file through tr. pointer is the last known pointer
	// position in pixels and drives the tooltip.
	Draw(tr Transform, file *dataview.File, pointer Point, opts DrawOptions) Frame
}

// New returns the strategy for t.
func New(t dataview.Type) (Chart, error) {
	switch t {
	case dataview.TypeXY:
		return XY{}, nil
	}
	return nil, dataview.UnsupportedType(t)
}
