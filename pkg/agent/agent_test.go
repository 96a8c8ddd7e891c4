package agent

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dataviewer/pkg/config"
	"dataviewer/pkg/dataview"
	"dataviewer/pkg/ipc"
	"dataviewer/pkg/viewer"
)

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) viewer.Timer {
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs every timer still armed.
func (s *manualScheduler) fire() {
	timers := s.timers
	s.timers = nil
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

func testConfig(t *testing.T) config.AgentConfig {
	cfg := config.DefaultAgentConfig()
	cfg.SnapshotDir = t.TempDir()
	cfg.ListenHost = "127.0.0.1"
	cfg.Port = 0
	cfg.Viewer.WindowWidth = 200
	cfg.Viewer.WindowHeight = 150
	cfg.Viewer.SocketPath = filepath.Join(t.TempDir(), "agent.sock")
	return cfg
}

func sample() *dataview.File {
	f := dataview.NewFile()
	f.DataView.Title = "ramp"
	f.Chart["a"] = dataview.Chart{Title: "A"}
	f.Data["a"] = dataview.Series{0, 0, 1, 1}
	return f
}

func TestSessionCoalescesSnapshots(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, zap.NewNop())
	sched := &manualScheduler{}
	a.scheduler = sched

	s := a.Connect()
	s.Open(sample())
	s.Append(&dataview.File{Data: map[string]dataview.Series{"a": {2, 4}}})
	s.Append(&dataview.File{Data: map[string]dataview.Series{"a": {3, 9}}})
	assert.Empty(t, a.Snapshots(), "nothing is written before the debounce fires")

	sched.fire()
	snaps := a.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, "session-0001", snaps[0].Session)
	assert.Equal(t, "ramp", snaps[0].Title)
	assert.Equal(t, 1, snaps[0].Writes)

	img, err := os.Open(filepath.Join(cfg.SnapshotDir, snaps[0].File))
	require.NoError(t, err)
	defer img.Close()
	decoded, err := png.Decode(img)
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 150, decoded.Bounds().Dy())
}

func TestSessionCloseFlushesPending(t *testing.T) {
	a := New(testConfig(t), zap.NewNop())
	sched := &manualScheduler{}
	a.scheduler = sched

	s := a.Connect()
	s.Open(sample())
	s.Append(&dataview.File{Data: map[string]dataview.Series{"a": {2, 4}}})
	s.Close()
	snaps := a.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].Series)
	require.Equal(t, "session-0001.dv.toml", snaps[0].Document)

	saved, err := dataview.Load(filepath.Join(a.cfg.SnapshotDir, snaps[0].Document))
	require.NoError(t, err)
	assert.Equal(t, dataview.Series{0, 0, 1, 1, 2, 4}, saved.Data["a"])

	sched.fire()
	assert.Equal(t, 1, a.Snapshots()[0].Writes, "stale timer must not write again")
}

func TestSessionIgnoresAppendBeforeOpen(t *testing.T) {
	a := New(testConfig(t), zap.NewNop())
	a.scheduler = &manualScheduler{}

	s := a.Connect()
	s.Append(&dataview.File{Data: map[string]dataview.Series{"a": {1, 1}}})
	s.Close()
	assert.Empty(t, a.Snapshots())
}

func TestSnapshotsEndpoint(t *testing.T) {
	a := New(testConfig(t), zap.NewNop())
	sched := &manualScheduler{}
	a.scheduler = sched
	a.Connect().Open(sample())
	sched.fire()

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots")
	require.NoError(t, err)
	defer resp.Body.Close()
	var snaps []Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snaps))
	require.Len(t, snaps, 1)

	img, err := http.Get(srv.URL + "/snapshots/" + snaps[0].File)
	require.NoError(t, err)
	defer img.Body.Close()
	assert.Equal(t, http.StatusOK, img.StatusCode)
	assert.Equal(t, "image/png", img.Header.Get("Content-Type"))

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRunWritesSnapshotsFromSocket(t *testing.T) {
	cfg := testConfig(t)
	cfg.Viewer.DebounceMs = 5
	a := New(cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return ipc.Running(cfg.Viewer.SocketPath) }, 2*time.Second, 10*time.Millisecond)

	client, err := ipc.Dial(cfg.Viewer.SocketPath)
	require.NoError(t, err)
	require.NoError(t, client.Send(sample()))
	require.NoError(t, client.Close())

	require.Eventually(t, func() bool {
		for _, s := range a.Snapshots() {
			if s.Title == "ramp" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop")
	}
}

func TestClient(t *testing.T) {
	a := New(testConfig(t), zap.NewNop())
	sched := &manualScheduler{}
	a.scheduler = sched
	s := a.Connect()
	s.Open(sample())
	s.Append(&dataview.File{Data: map[string]dataview.Series{"a": {2, 4, 3, 9}}})
	sched.fire()

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()
	client := NewClient(srv.URL + "/")
	assert.Equal(t, srv.URL, client.BaseURL())

	ctx := context.Background()
	require.NoError(t, client.Health(ctx))

	snaps, err := client.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "ramp", snaps[0].Title)

	metrics, err := client.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, metrics["dataviewer_appended_values_total"])
	assert.Contains(t, MetricNames(metrics), "dataviewer_ipc_connections_active")

	_, err = NewClient(srv.URL + "/missing").Snapshots(ctx)
	assert.Error(t, err)
}
