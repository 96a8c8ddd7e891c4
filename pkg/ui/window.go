package ui

import (
	"errors"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"dataviewer/pkg/dataview"
)

const (
	saveFileName  = "dataviewer.dv.toml"
	exportPNGName = "dataviewer.png"
	exportSVGName = "dataviewer.svg"
	windowTitle   = "DataViewer"
)

// Window is a top-level window holding one tab per open document.
type Window struct {
	app    *App
	win    fyne.Window
	tabs   *container.DocTabs
	status *widget.Label
}

func newWindow(a *App) *Window {
	w := &Window{
		app:    a,
		win:    a.fyne.NewWindow(windowTitle),
		tabs:   container.NewDocTabs(),
		status: widget.NewLabel(""),
	}
	w.win.Resize(fyne.NewSize(float32(a.cfg.WindowWidth), float32(a.cfg.WindowHeight)))
	if icon := Icon(); icon != nil {
		w.win.SetIcon(icon)
	}

	w.tabs.OnClosed = func(item *container.TabItem) {
		if cv, ok := item.Content.(*ChartView); ok {
			cv.Viewer.Close()
			if cv.Path != "" {
				a.unwatch(cv.Path)
			}
		}
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), w.openDialog),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), w.saveDialog),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FileImageIcon(), func() { w.exportDialog(false) }),
		widget.NewToolbarAction(theme.DownloadIcon(), func() { w.exportDialog(true) }),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.ZoomFitIcon(), w.autoview),
	)
	w.win.SetContent(container.NewBorder(toolbar, w.status, nil, nil, w.tabs))
	w.win.SetOnClosed(func() { a.forget(w) })
	return w
}

// Empty reports whether the window has no document open.
func (w *Window) Empty() bool {
	return len(w.tabs.Items) == 0
}

// First returns the view of the first tab, or nil.
func (w *Window) First() *ChartView {
	if w.Empty() {
		return nil
	}
	cv, _ := w.tabs.Items[0].Content.(*ChartView)
	return cv
}

// Current returns the view of the selected tab, or nil.
func (w *Window) Current() *ChartView {
	item := w.tabs.Selected()
	if item == nil {
		return nil
	}
	cv, _ := item.Content.(*ChartView)
	return cv
}

func (w *Window) views() []*ChartView {
	var out []*ChartView
	for _, item := range w.tabs.Items {
		if cv, ok := item.Content.(*ChartView); ok {
			out = append(out, cv)
		}
	}
	return out
}

// Open shows f in a new tab. source names where f came from.
func (w *Window) Open(f *dataview.File, path, source string) (*ChartView, error) {
	cv := NewChartView(w.app.viewerOptions())
	cv.Path = path
	cv.Source = source
	cv.OnPointer = func(x, y float64) {
		w.status.SetText(PointerText(cv.Viewer.View(), x, y))
	}
	if err := cv.Load(f); err != nil {
		return nil, err
	}
	item := container.NewTabItem(cv.Title(), cv)
	w.tabs.Append(item)
	w.tabs.Select(item)
	return cv, nil
}

// OpenFile loads path into a new tab.
func (w *Window) OpenFile(path string) error {
	f, err := dataview.Load(path)
	if err != nil {
		return err
	}
	if _, err := w.Open(f, path, filepath.Base(path)); err != nil {
		return err
	}
	w.app.watch(path)
	return nil
}

// ShowError reports err in a blocking dialog.
func (w *Window) ShowError(err error) {
	w.app.log.Warn("operation failed", zap.Error(err))
	dialog.ShowError(errors.New(dataview.UserMessage(err)), w.win)
}

func (w *Window) openDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			w.ShowError(err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		f, err := dataview.Read(reader)
		if err != nil {
			w.ShowError(err)
			return
		}
		path := reader.URI().Path()
		if _, err := w.Open(f, path, reader.URI().Name()); err != nil {
			w.ShowError(err)
			return
		}
		w.app.watch(path)
	}, w.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".toml"}))
	d.Show()
}

func (w *Window) saveDialog() {
	cv := w.Current()
	if cv == nil {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			w.ShowError(err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := cv.Viewer.WriteDocument(writer); err != nil {
			w.ShowError(dataview.IOError("write", writer.URI().Path(), err))
		}
	}, w.win)
	d.SetFileName(saveFileName)
	d.Show()
}

func (w *Window) exportDialog(svg bool) {
	cv := w.Current()
	if cv == nil {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			w.ShowError(err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if svg {
			err = cv.Viewer.ExportSVG(writer)
		} else {
			err = cv.Viewer.ExportPNG(writer)
		}
		if err != nil {
			w.ShowError(dataview.IOError("write", writer.URI().Path(), err))
		}
	}, w.win)
	if svg {
		d.SetFileName(exportSVGName)
	} else {
		d.SetFileName(exportPNGName)
	}
	d.Show()
}

func (w *Window) autoview() {
	if cv := w.Current(); cv != nil {
		cv.Viewer.SetAutoview(true)
	}
}
