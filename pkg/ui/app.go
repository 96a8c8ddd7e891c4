package ui

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"dataviewer/pkg/config"
	"dataviewer/pkg/dataview"
	"dataviewer/pkg/ipc"
	"dataviewer/pkg/viewer"
	"dataviewer/pkg/watch"
)

// mainThread runs functions on the fyne event loop.
var mainThread = viewer.DispatchFunc(fyne.Do)

// App is the desktop viewer: its windows, the live-update listener and the
// file watcher.
type App struct {
	fyne fyne.App
	cfg  config.ViewerConfig
	log  *zap.Logger

	windows []*Window
	metrics *ipc.Metrics
	watcher *watch.Watcher
}

func NewApp(cfg config.ViewerConfig, log *zap.Logger) *App {
	a := app.NewWithID("io.github.dataviewer")
	if icon := Icon(); icon != nil {
		a.SetIcon(icon)
	}
	return &App{
		fyne:    a,
		cfg:     cfg,
		log:     log,
		metrics: &ipc.Metrics{},
	}
}

func (a *App) viewerOptions() viewer.Options {
	return viewer.Options{
		Margin:    a.cfg.Margin(),
		Debounce:  a.cfg.Debounce(),
		Draw:      a.cfg.DrawOptions(),
		Scheduler: viewer.TimerScheduler{Dispatcher: mainThread},
		Logger:    a.log,
		Width:     float64(a.cfg.WindowWidth),
		Height:    float64(a.cfg.WindowHeight),
	}
}

func (a *App) newWindow() *Window {
	w := newWindow(a)
	a.windows = append(a.windows, w)
	return w
}

// emptyWindow returns a window without documents, creating one if needed.
func (a *App) emptyWindow() *Window {
	for _, w := range a.windows {
		if w.Empty() {
			return w
		}
	}
	w := a.newWindow()
	w.win.Show()
	return w
}

func (a *App) forget(w *Window) {
	for i, other := range a.windows {
		if other == w {
			a.windows = append(a.windows[:i], a.windows[i+1:]...)
			break
		}
	}
	for _, cv := range w.views() {
		cv.Viewer.Close()
		if cv.Path != "" {
			a.unwatch(cv.Path)
		}
	}
}

func (a *App) watch(path string) {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Add(path); err != nil {
		a.log.Warn("cannot watch file", zap.String("path", path), zap.Error(err))
	}
}

func (a *App) unwatch(path string) {
	if a.watcher != nil {
		a.watcher.Remove(path)
	}
}

// reload loads path again into every view showing it.
func (a *App) reload(path string) {
	for _, w := range a.windows {
		for _, item := range w.tabs.Items {
			cv, ok := item.Content.(*ChartView)
			if !ok || !samePath(cv.Path, path) {
				continue
			}
			f, err := dataview.Load(path)
			if err != nil {
				w.ShowError(err)
				continue
			}
			if err := cv.Load(f); err != nil {
				w.ShowError(err)
				continue
			}
			item.Text = cv.Title()
			w.tabs.Refresh()
			a.log.Info("document reloaded", zap.String("path", path))
		}
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// Connect implements ipc.Handler. The session gets its window on the first
// document it opens.
func (a *App) Connect() ipc.Session {
	return &session{app: a}
}

type session struct {
	app *App
	win *Window
}

func (s *session) alive() bool {
	if s.win == nil {
		return false
	}
	for _, w := range s.app.windows {
		if w == s.win {
			return true
		}
	}
	return false
}

func (s *session) Open(f *dataview.File) {
	if !s.alive() {
		s.win = s.app.emptyWindow()
	}
	if _, err := s.win.Open(f, "", "ipc://"+s.app.cfg.SocketPath); err != nil {
		s.win.ShowError(err)
	}
}

func (s *session) Append(f *dataview.File) {
	if !s.alive() {
		return
	}
	if cv := s.win.First(); cv != nil {
		s.app.metrics.AddAppended(cv.Viewer.Append(f))
	}
}

func (s *session) Close() {}

// Options are the command line settings of the desktop viewer.
type Options struct {
	Files []string
	Watch bool
}

// Run shows the main window with opts.Files and blocks until the last
// window is closed. The live-update listener and the file watcher run for
// as long as the window is open.
func (a *App) Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Watch {
		w, err := watch.New(func(path string) {
			fyne.Do(func() { a.reload(path) })
		}, a.log)
		if err != nil {
			return err
		}
		a.watcher = w
		go func() { _ = w.Run(ctx) }()
	}

	first := a.newWindow()
	first.win.SetMaster()
	for _, path := range opts.Files {
		if err := first.OpenFile(path); err != nil {
			first.ShowError(err)
		}
	}

	srv := ipc.NewServer(a.cfg.SocketPath, a, mainThread, a.log)
	srv.Metrics = a.metrics
	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			a.log.Error("live-update listener stopped", zap.Error(err))
		}
	}()

	if a.cfg.MetricsAddr != "" {
		go a.serveMetrics(ctx)
	}

	first.win.ShowAndRun()
	return nil
}

func (a *App) serveMetrics(ctx context.Context) {
	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           a.metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	a.log.Info("serving metrics", zap.String("addr", a.cfg.MetricsAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error("metrics server failed", zap.Error(err))
	}
}
