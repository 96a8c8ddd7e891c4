package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataviewer/pkg/chart"
	"dataviewer/pkg/dataview"
	"dataviewer/pkg/viewer"
)

func newTestChartView(t *testing.T) *ChartView {
	t.Helper()
	test.NewTempApp(t)

	cv := NewChartView(viewer.Options{Scheduler: viewer.InlineScheduler{}})
	f := dataview.NewFile()
	f.DataView.Title = "widget"
	f.Data["a"] = dataview.Series{0, 0, 5, 5, 10, 10}
	require.NoError(t, cv.Load(f))
	cv.Resize(fyne.NewSize(400, 300))
	return cv
}

func TestChartView_PaintsFrame(t *testing.T) {
	cv := newTestChartView(t)
	objects := test.WidgetRenderer(cv).Objects()

	var texts []string
	var lines int
	for _, o := range objects {
		switch o := o.(type) {
		case *canvas.Text:
			texts = append(texts, o.Text)
		case *canvas.Line:
			lines++
		}
	}
	assert.Contains(t, texts, "widget")
	assert.Greater(t, lines, 2)
	assert.Equal(t, "widget", cv.Title())

	w, h := cv.Viewer.Size()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 300.0, h)
}

func TestChartView_ScrollZooms(t *testing.T) {
	cv := newTestChartView(t)
	before := cv.Viewer.View()

	cv.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 1)})
	after := cv.Viewer.View()
	assert.Less(t, after.SpanX(), before.SpanX())
	assert.False(t, cv.Viewer.Autoview())
}

func TestChartView_DragPans(t *testing.T) {
	cv := newTestChartView(t)
	before := cv.Viewer.View()

	ev := &fyne.DragEvent{Dragged: fyne.NewDelta(40, 0)}
	ev.Position = fyne.NewPos(140, 100)
	cv.Dragged(ev)
	assert.Equal(t, viewer.Dragging, cv.Viewer.State())
	assert.Less(t, cv.Viewer.View().XMin, before.XMin)

	cv.DragEnd()
	assert.Equal(t, viewer.Idle, cv.Viewer.State())
}

func TestChartView_HoverShowsTooltip(t *testing.T) {
	cv := newTestChartView(t)
	frame := cv.Viewer.Render(400, 300)
	require.Nil(t, frame.Tooltip)

	// Hover right over the data point (5, 5).
	v := cv.Viewer.View()
	x := (5 - v.XMin) / v.SpanX() * 400
	y := 300 - (5-v.YMin)/v.SpanY()*300
	ev := &desktop.MouseEvent{}
	ev.Position = fyne.NewPos(float32(x), float32(y))
	cv.MouseMoved(ev)

	frame = cv.Viewer.Render(400, 300)
	require.NotNil(t, frame.Tooltip)
	assert.Equal(t, 5.0, frame.Tooltip.X)
}

func TestDrawIcon(t *testing.T) {
	img := DrawIcon(64)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.NotNil(t, Icon())
}

func TestChartView_ReportsPointerData(t *testing.T) {
	cv := newTestChartView(t)
	var gotX, gotY float64
	calls := 0
	cv.OnPointer = func(x, y float64) {
		gotX, gotY = x, y
		calls++
	}

	cv.Viewer.Render(400, 300)
	v := cv.Viewer.View()
	ev := &desktop.MouseEvent{}
	ev.Position = fyne.NewPos(200, 150)
	cv.MouseMoved(ev)

	require.Equal(t, 1, calls)
	assert.InDelta(t, v.XMin+v.SpanX()/2, gotX, 1e-4)
	assert.InDelta(t, v.YMin+v.SpanY()/2, gotY, 1e-4)
	assert.Equal(t, "x: 2.0000   y: 3.0000", PointerText(chart.ViewRect{XMax: 5, YMax: 5}, 2, 3))
}
