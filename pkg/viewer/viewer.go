// Package viewer holds the interaction state of one chart view: the document
// it shows, the visible rectangle, the pointer, and the pending redraw.
//
// A Viewer is not safe for concurrent use. Every call, including timer
// callbacks, must happen on the goroutine that owns it; producers on other
// goroutines go through a Dispatcher.
package viewer

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"dataviewer/pkg/chart"
	"dataviewer/pkg/dataview"
	"dataviewer/pkg/render"
)

// DefaultDebounce delays redraws triggered by pointer motion.
const DefaultDebounce = 50 * time.Millisecond

// State is the pointer state of a Viewer.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Options configures a Viewer. Zero fields take their defaults.
type Options struct {
	Margin    float64
	Debounce  time.Duration
	Draw      chart.DrawOptions
	// Scheduler must fire its callbacks on the goroutine owning the Viewer.
	// The default, InlineScheduler, repaints at once without debouncing.
	Scheduler Scheduler
	Logger    *zap.Logger
	// Width and Height size exports made before the first Render.
	Width, Height float64
}

func (o *Options) applyDefaults() {
	if o.Margin <= 0 {
		o.Margin = chart.DefaultMargin
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.Draw.TooltipThreshold <= 0 {
		o.Draw.TooltipThreshold = chart.DefaultTooltipThreshold
	}
	if len(o.Draw.Palette) == 0 {
		o.Draw.Palette = chart.Palette1
	}
	if o.Scheduler == nil {
		o.Scheduler = InlineScheduler{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = 800, 600
	}
}

// Viewer is the controller of one chart view.
type Viewer struct {
	opts    Options
	log     *zap.Logger
	repaint func()

	file  *dataview.File
	chart chart.Chart
	view  chart.ViewRect

	width, height float64
	pointer       chart.Point
	ref           chart.Point
	state         State
	autoview      bool

	timer Timer
	gen   uint64
}

// New returns an empty Viewer. repaint is called whenever the view needs
// to be drawn again; it typically ends up calling Render.
func New(opts Options, repaint func()) *Viewer {
	opts.applyDefaults()
	if repaint == nil {
		repaint = func() {}
	}
	return &Viewer{
		opts:     opts,
		log:      opts.Logger,
		repaint:  repaint,
		view:     chart.FallbackView,
		autoview: true,
	}
}

// Load replaces the document shown by v with a copy of file. On error v is
// left untouched.
func (v *Viewer) Load(file *dataview.File) error {
	if file == nil {
		file = dataview.NewFile()
	}
	c, err := chart.New(file.DataView.Type)
	if err != nil {
		return err
	}
	file = file.Clone()
	file.Normalize()
	v.file = file
	v.chart = c
	v.autoview = true
	v.view = c.View(file, v.opts.Margin)
	v.log.Debug("document loaded",
		zap.String("title", file.DataView.Title),
		zap.Int("series", len(file.Data)))
	v.redrawNow()
	return nil
}

// Append adds the values of update to the series already present in the
// document and returns how many values were added.
func (v *Viewer) Append(update *dataview.File) int {
	if v.file == nil {
		return 0
	}
	n := v.file.Append(update)
	if n == 0 {
		return 0
	}
	if v.autoview {
		v.view = v.chart.View(v.file, v.opts.Margin)
	}
	v.redrawNow()
	return n
}

// Render draws the current state onto a width x height surface and records
// that size for later pans and exports.
func (v *Viewer) Render(width, height float64) chart.Frame {
	v.width, v.height = width, height
	return v.frame(width, height)
}

func (v *Viewer) frame(width, height float64) chart.Frame {
	if v.chart == nil {
		return chart.Frame{Width: width, Height: height}
	}
	tr := chart.NewTransform(v.view, width, height)
	return v.chart.Draw(tr, v.file, v.pointer, v.opts.Draw)
}

// PointerPressed starts a drag at (x, y).
func (v *Viewer) PointerPressed(x, y float64) {
	v.state = Dragging
	v.ref = chart.Point{X: x, Y: y}
	v.pointer = v.ref
}

// PointerMoved pans the view while dragging and tracks the pointer for the
// tooltip otherwise. Either way the redraw is debounced.
func (v *Viewer) PointerMoved(x, y float64) {
	p := chart.Point{X: x, Y: y}
	if v.state == Dragging {
		next := v.view.Pan(p.X-v.ref.X, p.Y-v.ref.Y, v.width, v.height)
		if next.Valid() {
			v.view = next
			v.autoview = false
		}
		v.ref = p
	}
	v.pointer = p
	v.requestRedraw()
}

// PointerData returns the data coordinates under the pointer. ok is false
// until a document has been rendered.
func (v *Viewer) PointerData() (x, y float64, ok bool) {
	if v.chart == nil || v.width <= 0 || v.height <= 0 {
		return 0, 0, false
	}
	tr := chart.NewTransform(v.view, v.width, v.height)
	return tr.DataX(v.pointer.X), tr.DataY(v.pointer.Y), true
}

func (v *Viewer) PointerReleased() {
	v.state = Idle
}

// Scroll zooms in for dy > 0 and out otherwise, then redraws at once.
func (v *Viewer) Scroll(dy float64) {
	next := v.view.Zoom(dy)
	if !next.Valid() {
		return
	}
	v.view = next
	v.autoview = false
	v.redrawNow()
}

// SetAutoview switches autoview mode. Enabling it fits the view to the data.
func (v *Viewer) SetAutoview(on bool) {
	v.autoview = on
	if !on {
		return
	}
	if v.chart != nil {
		v.view = v.chart.View(v.file, v.opts.Margin)
	} else {
		v.view = chart.FallbackView
	}
	v.redrawNow()
}

func (v *Viewer) Autoview() bool           { return v.autoview }
func (v *Viewer) View() chart.ViewRect     { return v.view }
func (v *Viewer) State() State             { return v.state }
func (v *Viewer) Pointer() chart.Point     { return v.pointer }
func (v *Viewer) File() *dataview.File     { return v.file }
func (v *Viewer) Pending() bool            { return v.timer != nil }
func (v *Viewer) Size() (float64, float64) { return v.width, v.height }

// Title is the document title, or "" when nothing is loaded.
func (v *Viewer) Title() string {
	if v.file == nil {
		return ""
	}
	return v.file.DataView.Title
}

// requestRedraw replaces any pending redraw with one due after the
// debounce delay.
func (v *Viewer) requestRedraw() {
	v.cancelPending()
	gen := v.gen
	v.timer = v.opts.Scheduler.AfterFunc(v.opts.Debounce, func() {
		if gen != v.gen {
			return
		}
		v.timer = nil
		v.repaint()
	})
}

func (v *Viewer) redrawNow() {
	v.cancelPending()
	v.repaint()
}

func (v *Viewer) cancelPending() {
	v.gen++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

// Close drops the pending redraw, if any.
func (v *Viewer) Close() {
	v.cancelPending()
}

func (v *Viewer) exportSize() (float64, float64) {
	if v.width > 0 && v.height > 0 {
		return v.width, v.height
	}
	return v.opts.Width, v.opts.Height
}

// ExportPNG writes the current view as a PNG image at the last rendered size.
func (v *Viewer) ExportPNG(w io.Writer) error {
	return render.WritePNG(w, v.frame(v.exportSize()))
}

// ExportSVG writes the current view as an SVG document at the last rendered size.
func (v *Viewer) ExportSVG(w io.Writer) error {
	return render.WriteSVG(w, v.frame(v.exportSize()))
}

// ExportFile writes the current view to path, as SVG when svg is set and
// as PNG otherwise.
func (v *Viewer) ExportFile(path string, svg bool) error {
	out, err := os.Create(path)
	if err != nil {
		return dataview.IOError("create", path, err)
	}
	if svg {
		err = v.ExportSVG(out)
	} else {
		err = v.ExportPNG(out)
	}
	if err != nil {
		out.Close()
		return dataview.IOError("write", path, err)
	}
	if err := out.Close(); err != nil {
		return dataview.IOError("write", path, err)
	}
	v.log.Info("view exported", zap.String("path", path), zap.Bool("svg", svg))
	return nil
}

// WriteDocument encodes the document, including appended values, as TOML.
func (v *Viewer) WriteDocument(w io.Writer) error {
	return dataview.Write(w, v.document())
}

// Save writes the document, including appended values, to path.
func (v *Viewer) Save(path string) error {
	return dataview.Save(path, v.document())
}

func (v *Viewer) document() *dataview.File {
	if v.file == nil {
		return dataview.NewFile()
	}
	return v.file
}
