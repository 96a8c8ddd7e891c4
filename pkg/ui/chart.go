package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"dataviewer/pkg/chart"
	"dataviewer/pkg/dataview"
	"dataviewer/pkg/render"
	"dataviewer/pkg/viewer"
)

// ChartView displays one Viewer and feeds it pointer and wheel events.
type ChartView struct {
	widget.BaseWidget

	Viewer *viewer.Viewer
	// Path is the file the document was loaded from, empty for documents
	// received over the socket.
	Path   string
	Source string
	// OnPointer receives the data coordinates under the pointer.
	OnPointer func(x, y float64)
}

var (
	_ fyne.Widget       = (*ChartView)(nil)
	_ fyne.Draggable    = (*ChartView)(nil)
	_ fyne.Scrollable   = (*ChartView)(nil)
	_ desktop.Mouseable = (*ChartView)(nil)
	_ desktop.Hoverable = (*ChartView)(nil)
)

func NewChartView(opts viewer.Options) *ChartView {
	cv := &ChartView{}
	cv.Viewer = viewer.New(opts, cv.Refresh)
	cv.ExtendBaseWidget(cv)
	return cv
}

// Title is the label of the tab showing cv.
func (cv *ChartView) Title() string {
	if t := cv.Viewer.Title(); t != "" {
		return t
	}
	if cv.Source != "" {
		return cv.Source
	}
	return "untitled"
}

func (cv *ChartView) Load(f *dataview.File) error {
	return cv.Viewer.Load(f)
}

func (cv *ChartView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		cv.Viewer.PointerPressed(float64(ev.Position.X), float64(ev.Position.Y))
	}
}

func (cv *ChartView) MouseUp(*desktop.MouseEvent) {
	cv.Viewer.PointerReleased()
}

func (cv *ChartView) Dragged(ev *fyne.DragEvent) {
	if cv.Viewer.State() != viewer.Dragging {
		start := ev.Position.Subtract(ev.Dragged)
		cv.Viewer.PointerPressed(float64(start.X), float64(start.Y))
	}
	cv.Viewer.PointerMoved(float64(ev.Position.X), float64(ev.Position.Y))
	cv.notifyPointer()
}

func (cv *ChartView) DragEnd() {
	cv.Viewer.PointerReleased()
}

func (cv *ChartView) MouseIn(ev *desktop.MouseEvent) {
	cv.MouseMoved(ev)
}

func (cv *ChartView) MouseMoved(ev *desktop.MouseEvent) {
	cv.Viewer.PointerMoved(float64(ev.Position.X), float64(ev.Position.Y))
	cv.notifyPointer()
}

func (cv *ChartView) notifyPointer() {
	if cv.OnPointer == nil {
		return
	}
	if x, y, ok := cv.Viewer.PointerData(); ok {
		cv.OnPointer(x, y)
	}
}

// PointerText formats a pointer position with the precision of the axis labels.
func PointerText(view chart.ViewRect, x, y float64) string {
	return "x: " + chart.FormatValue(x, view.SpanX()) + "   y: " + chart.FormatValue(y, view.SpanY())
}

func (cv *ChartView) MouseOut() {}

// Scrolled zooms in when the wheel moves away from the user.
func (cv *ChartView) Scrolled(ev *fyne.ScrollEvent) {
	cv.Viewer.Scroll(float64(ev.Scrolled.DY))
}

func (cv *ChartView) CreateRenderer() fyne.WidgetRenderer {
	r := &chartRenderer{
		cv: cv,
		bg: canvas.NewRectangle(render.Background),
	}
	return r
}

type chartRenderer struct {
	cv      *ChartView
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
	size    fyne.Size
}

func (r *chartRenderer) Destroy() {
	r.cv.Viewer.Close()
}

func (r *chartRenderer) Layout(size fyne.Size) {
	r.size = size
	r.paint()
}

func (r *chartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

func (r *chartRenderer) Refresh() {
	r.size = r.cv.Size()
	r.paint()
}

func (r *chartRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// paint turns a frame into canvas objects. Frame texts are anchored on
// their baseline while fyne places text by its top-left corner.
func (r *chartRenderer) paint() {
	r.bg.Resize(r.size)
	objects := []fyne.CanvasObject{r.bg}
	if r.size.Width <= 0 || r.size.Height <= 0 {
		r.objects = objects
		return
	}

	frame := r.cv.Viewer.Render(float64(r.size.Width), float64(r.size.Height))
	for _, cmd := range frame.Commands {
		switch c := cmd.(type) {
		case chart.Line:
			objects = append(objects, newLine(c.From, c.To, c.Color, c.Width))
		case chart.Polyline:
			for i := 1; i < len(c.Points); i++ {
				objects = append(objects, newLine(c.Points[i-1], c.Points[i], c.Color, c.Width))
			}
		case chart.Circle:
			circle := canvas.NewCircle(color.Transparent)
			if c.Fill {
				circle.FillColor = c.Color
			} else {
				circle.StrokeColor = c.Color
				circle.StrokeWidth = 1
			}
			circle.Position1 = pos(chart.Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius})
			circle.Position2 = pos(chart.Point{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius})
			objects = append(objects, circle)
		case chart.Text:
			text := canvas.NewText(c.Body, c.Color)
			text.TextSize = float32(c.Size)
			text.Move(pos(chart.Point{X: c.At.X, Y: c.At.Y - c.Size}))
			objects = append(objects, text)
		}
	}
	r.objects = objects
}

func newLine(from, to chart.Point, c color.RGBA, width float64) *canvas.Line {
	line := canvas.NewLine(c)
	line.StrokeWidth = float32(width)
	line.Position1 = pos(from)
	line.Position2 = pos(to)
	return line
}

func pos(p chart.Point) fyne.Position {
	return fyne.NewPos(float32(p.X), float32(p.Y))
}
