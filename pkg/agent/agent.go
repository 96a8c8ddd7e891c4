// Package agent runs the viewer without a display. Every connection on the
// live-update socket gets its own viewer whose frames are written as PNG
// snapshots, and an HTTP endpoint exposes metrics and the snapshots.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"dataviewer/pkg/config"
	"dataviewer/pkg/dataview"
	"dataviewer/pkg/ipc"
	"dataviewer/pkg/viewer"
)

const queueSize = 64

// Snapshot describes the latest image written for a session. Document is
// set once the session has ended and its data was saved.
type Snapshot struct {
	Session  string    `json:"session"`
	Title    string    `json:"title"`
	Series   int       `json:"series"`
	File     string    `json:"file"`
	Document string    `json:"document,omitempty"`
	Writes   int       `json:"writes"`
	Updated  time.Time `json:"updated"`
}

type Agent struct {
	cfg       config.AgentConfig
	log       *zap.Logger
	queue     *viewer.Queue
	scheduler viewer.Scheduler
	metrics   *ipc.Metrics

	// nextSession is only touched on the queue goroutine.
	nextSession int

	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func New(cfg config.AgentConfig, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	queue := viewer.NewQueue(queueSize)
	return &Agent{
		cfg:       cfg,
		log:       log,
		queue:     queue,
		scheduler: viewer.TimerScheduler{Dispatcher: queue},
		metrics:   &ipc.Metrics{},
		snapshots: make(map[string]Snapshot),
	}
}

// Run serves the socket and the HTTP endpoint until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	if err := os.MkdirAll(a.cfg.SnapshotDir, 0o755); err != nil {
		return dataview.IOError("create", a.cfg.SnapshotDir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ln, err := net.Listen("tcp", a.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.ListenAddr(), err)
	}
	httpSrv := &http.Server{Handler: a.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Close()
	}()
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	go func() { _ = a.queue.Run(ctx) }()

	srv := ipc.NewServer(a.cfg.Viewer.SocketPath, a, a.queue, a.log)
	srv.Metrics = a.metrics
	a.log.Info("agent started",
		zap.String("socket", a.cfg.Viewer.SocketPath),
		zap.String("http", ln.Addr().String()),
		zap.String("snapshot_dir", a.cfg.SnapshotDir))
	return srv.ListenAndServe(ctx)
}

// Handler serves /metrics, /healthz, the snapshot index at /snapshots and
// the images under /snapshots/.
func (a *Agent) Handler() http.Handler {
	mux := http.NewServeMux()
	metrics := a.metrics.Handler()
	mux.Handle("/metrics", metrics)
	mux.Handle("/healthz", metrics)
	mux.HandleFunc("/snapshots", a.handleSnapshots)
	mux.Handle("/snapshots/", http.StripPrefix("/snapshots/", http.FileServer(http.Dir(a.cfg.SnapshotDir))))
	return mux
}

// Snapshots returns the latest snapshot of every session, oldest session first.
func (a *Agent) Snapshots() []Snapshot {
	a.mu.RLock()
	out := make([]Snapshot, 0, len(a.snapshots))
	for _, s := range a.snapshots {
		out = append(out, s)
	}
	a.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

func (a *Agent) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.Snapshots())
}

func (a *Agent) record(s Snapshot) {
	a.mu.Lock()
	prev := a.snapshots[s.Session]
	s.Writes = prev.Writes + 1
	a.snapshots[s.Session] = s
	a.mu.Unlock()
}

func (a *Agent) recordDocument(session, file string) {
	a.mu.Lock()
	if s, ok := a.snapshots[session]; ok {
		s.Document = file
		a.snapshots[session] = s
	}
	a.mu.Unlock()
}

// Connect implements ipc.Handler.
func (a *Agent) Connect() ipc.Session {
	a.nextSession++
	return &session{agent: a, name: fmt.Sprintf("session-%04d", a.nextSession)}
}

// session renders the documents of one connection. Redraws requested by
// the viewer are coalesced so a burst of appends writes a single file.
type session struct {
	agent *Agent
	name  string
	v     *viewer.Viewer

	timer viewer.Timer
	gen   uint64
}

func (s *session) Open(f *dataview.File) {
	if s.v == nil {
		vc := s.agent.cfg.Viewer
		s.v = viewer.New(viewer.Options{
			Margin: vc.Margin(),
			Draw:   vc.DrawOptions(),
			Logger: s.agent.log.With(zap.String("session", s.name)),
			Width:  float64(vc.WindowWidth),
			Height: float64(vc.WindowHeight),
		}, s.schedule)
	}
	if err := s.v.Load(f); err != nil {
		s.agent.log.Warn("document rejected",
			zap.String("session", s.name),
			zap.String("reason", dataview.UserMessage(err)))
	}
}

func (s *session) Append(f *dataview.File) {
	if s.v == nil {
		return
	}
	s.agent.metrics.AddAppended(s.v.Append(f))
}

// Close writes a pending snapshot right away and saves the document with
// every value received.
func (s *session) Close() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.write()
	}
	s.gen++
	if s.v == nil {
		return
	}
	s.v.Close()
	if s.v.File() == nil {
		return
	}
	path := filepath.Join(s.agent.cfg.SnapshotDir, s.name+".dv.toml")
	if err := s.v.Save(path); err != nil {
		s.agent.log.Error("saving document failed", zap.String("session", s.name), zap.Error(err))
		return
	}
	s.agent.recordDocument(s.name, filepath.Base(path))
}

func (s *session) schedule() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.agent.scheduler.AfterFunc(s.agent.cfg.Viewer.Debounce(), func() {
		if gen != s.gen {
			return
		}
		s.timer = nil
		s.write()
	})
}

func (s *session) write() {
	path := filepath.Join(s.agent.cfg.SnapshotDir, s.name+".png")
	tmp := path + ".tmp"
	if err := s.v.ExportFile(tmp, false); err != nil {
		s.agent.log.Error("snapshot failed", zap.String("session", s.name), zap.Error(err))
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.agent.log.Error("snapshot failed", zap.String("session", s.name), zap.Error(err))
		return
	}
	s.agent.record(Snapshot{
		Session: s.name,
		Title:   s.v.Title(),
		Series:  len(s.v.File().Data),
		File:    filepath.Base(path),
		Updated: time.Now(),
	})
}
