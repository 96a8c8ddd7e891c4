package ipc

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"dataviewer/pkg/dataview"
	"dataviewer/pkg/viewer"
)

// Session receives the documents of one connection. Its methods are called
// on the dispatcher's goroutine.
type Session interface {
	Open(f *dataview.File)
	Append(f *dataview.File)
	Close()
}

// Handler creates a Session for every accepted connection. Connect is
// called on the dispatcher's goroutine.
type Handler interface {
	Connect() Session
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func() Session

func (h HandlerFunc) Connect() Session { return h() }

var ErrAlreadyRunning = errors.New("another instance is listening on the socket")

type Server struct {
	Path       string
	Handler    Handler
	Dispatcher viewer.Dispatcher
	Metrics    *Metrics
	Logger     *zap.Logger

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
	nextID atomic.Uint64
}

func NewServer(path string, h Handler, d viewer.Dispatcher, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Path:       path,
		Handler:    h,
		Dispatcher: d,
		Metrics:    &Metrics{},
		Logger:     log,
	}
}

// Listen binds the socket, replacing a stale socket file left by a dead
// instance. It fails with ErrAlreadyRunning when a live instance answers.
func (s *Server) Listen() (net.Listener, error) {
	if Running(s.Path) {
		return nil, ErrAlreadyRunning
	}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return net.Listen("unix", s.Path)
}

// ListenAndServe binds the socket and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes the
// listener and every open connection and waits for their readers.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Logger.Info("listening for live updates", zap.String("socket", ln.Addr().String()))
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		s.closeConns()
	})
	defer stop()

	var err error
	for {
		var conn net.Conn
		conn, err = ln.Accept()
		if err != nil {
			break
		}
		s.track(conn)
		s.wg.Add(1)
		go s.serveConn(conn)
	}

	ln.Close()
	s.closeConns()
	s.wg.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *Server) dispatch(f func()) {
	if s.Dispatcher == nil {
		f()
		return
	}
	s.Dispatcher.Dispatch(f)
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	s.Metrics.connectionOpened()
	defer s.Metrics.connectionClosed()
	log := s.Logger.With(zap.Uint64("conn", s.nextID.Add(1)))
	log.Debug("live-update client connected")

	// session is only touched from dispatched functions.
	var session Session
	s.dispatch(func() { session = s.Handler.Connect() })
	defer s.dispatch(func() {
		if session != nil {
			session.Close()
		}
	})

	dec := NewDecoder(conn)
	for {
		f, err := dec.Decode()
		if dataview.IsParseError(err) {
			s.Metrics.decodeError()
			log.Warn("skipping malformed message", zap.Error(err))
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Warn("live-update stream closed", zap.Error(err))
			}
			return
		}

		kind := Classify(f)
		s.Metrics.message(kind)
		log.Debug("message received", zap.Stringer("kind", kind))
		switch kind {
		case KindOpen:
			s.dispatch(func() { session.Open(f) })
		case KindAppend:
			s.dispatch(func() { session.Append(f) })
		}
	}
}
