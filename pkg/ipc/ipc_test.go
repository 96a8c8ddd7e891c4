package ipc

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dataviewer/pkg/dataview"
)

func openDoc() *dataview.File {
	f := dataview.NewFile()
	f.DataView.Title = "live"
	f.Chart["a"] = dataview.Chart{Title: "probe"}
	f.Data["a"] = dataview.Series{0, 1}
	return f
}

func appendDoc() *dataview.File {
	f := dataview.NewFile()
	f.Data["a"] = dataview.Series{1, 2, 2, 3}
	return f
}

func TestFraming_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, openDoc()))
	require.NoError(t, WriteMessage(&buf, appendDoc()))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte{Delimiter}))

	dec := NewDecoder(&buf)
	first, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, openDoc(), first)
	second, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, dataview.Series{1, 2, 2, 3}, second.Data["a"])

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFraming_OverSocketPair(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	go func() {
		_ = WriteMessage(client, appendDoc())
		client.Close()
	}()

	f, err := NewDecoder(server).Decode()
	require.NoError(t, err)
	assert.Equal(t, KindAppend, Classify(f))
}

func TestDecoder_Truncated(t *testing.T) {
	dec := NewDecoder(strings.NewReader("[data]\na = [1, 2]\x00[data]\na = ["))
	_, err := dec.Next()
	require.NoError(t, err)
	_, err = dec.Next()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindOpen, Classify(openDoc()))
	assert.Equal(t, KindAppend, Classify(appendDoc()))
	assert.Equal(t, KindIgnore, Classify(dataview.NewFile()))
	assert.Equal(t, KindIgnore, Classify(nil))
}

type event struct {
	name string
	file *dataview.File
}

// recorder hands out one recordingSession per connection.
type recorder struct {
	mu       sync.Mutex
	sessions []*recordingSession
}

type recordingSession struct {
	mu     sync.Mutex
	events []event
	closed chan struct{}
}

func (r *recorder) Connect() Session {
	s := &recordingSession{closed: make(chan struct{})}
	r.mu.Lock()
	r.sessions = append(r.sessions, s)
	r.mu.Unlock()
	return s
}

func (r *recorder) all() []*recordingSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*recordingSession(nil), r.sessions...)
}

func (s *recordingSession) add(e event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSession) Open(f *dataview.File)   { s.add(event{"open", f}) }
func (s *recordingSession) Append(f *dataview.File) { s.add(event{"append", f}) }
func (s *recordingSession) Close() {
	s.add(event{name: "close"})
	close(s.closed)
}

func (s *recordingSession) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.events {
		out = append(out, e.name)
	}
	return out
}

func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "dv")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "dv.ipc")
}

func TestServer_DispatchesMessages(t *testing.T) {
	path := socketPath(t)
	rec := &recorder{}
	srv := NewServer(path, rec, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	ln, err := srv.Listen()
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	// Both probes connect and hang up: two empty sessions.
	assert.True(t, Running(path))
	_, err = srv.Listen()
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	c, err := Dial(path)
	require.NoError(t, err)
	require.NoError(t, c.Send(openDoc()))
	_, err = c.conn.Write([]byte("not = [valid\x00"))
	require.NoError(t, err)
	require.NoError(t, c.Send(appendDoc()))
	require.NoError(t, c.Send(dataview.NewFile()))
	require.NoError(t, c.Close())

	require.Eventually(t, func() bool { return len(rec.all()) == 3 }, 5*time.Second, 10*time.Millisecond)
	for _, s := range rec.all() {
		select {
		case <-s.closed:
		case <-time.After(5 * time.Second):
			require.Fail(t, "session was not closed")
		}
	}

	cancel()
	require.NoError(t, <-done)
	assert.False(t, Running(path))

	var live *recordingSession
	for _, s := range rec.all() {
		if len(s.names()) > 1 {
			live = s
		} else {
			assert.Equal(t, []string{"close"}, s.names())
		}
	}
	require.NotNil(t, live)
	assert.Equal(t, []string{"open", "append", "close"}, live.names())
	assert.Equal(t, "live", live.events[0].file.DataView.Title)

	assert.Equal(t, uint64(3), srv.Metrics.connections.Load())
	assert.Equal(t, uint64(1), srv.Metrics.decodeErrors.Load())
	assert.Equal(t, uint64(1), srv.Metrics.opened.Load())
	assert.Equal(t, uint64(1), srv.Metrics.appends.Load())
	assert.Equal(t, uint64(1), srv.Metrics.ignored.Load())
	assert.Equal(t, int64(0), srv.Metrics.active.Load())
}

func TestServer_ShutdownClosesConnections(t *testing.T) {
	path := socketPath(t)
	rec := &recorder{}
	srv := NewServer(path, rec, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	var c *Client
	require.Eventually(t, func() bool {
		var err error
		c, err = Dial(path)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	defer c.Close()
	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.Fail(t, "server did not stop")
	}
	<-rec.all()[0].closed
}

func TestMetrics_Text(t *testing.T) {
	m := &Metrics{}
	m.connectionOpened()
	m.message(KindOpen)
	m.message(KindAppend)
	m.message(KindAppend)
	m.decodeError()
	m.AddAppended(6)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "dataviewer_ipc_connections_total 1")
	assert.Contains(t, out, "dataviewer_ipc_connections_active 1")
	assert.Contains(t, out, `dataviewer_ipc_messages_total{kind="append"} 2`)
	assert.Contains(t, out, `dataviewer_ipc_messages_total{kind="open"} 1`)
	assert.Contains(t, out, "dataviewer_ipc_decode_errors_total 1")
	assert.Contains(t, out, "dataviewer_appended_values_total 6")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}
