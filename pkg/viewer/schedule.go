package viewer

import (
	"context"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler arms one-shot timers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Dispatcher runs f on the thread that owns the viewers.
type Dispatcher interface {
	Dispatch(f func())
}

// DispatchFunc adapts a function to a Dispatcher.
type DispatchFunc func(f func())

func (d DispatchFunc) Dispatch(f func()) { d(f) }

// TimerScheduler fires timers through Dispatcher so callbacks run on the
// owning thread rather than on the timer goroutine. Without a Dispatcher
// callbacks run on the timer goroutine.
type TimerScheduler struct {
	Dispatcher Dispatcher
}

func (s TimerScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() {
		if s.Dispatcher == nil {
			f()
			return
		}
		s.Dispatcher.Dispatch(f)
	})
}

// InlineScheduler runs callbacks right away on the calling goroutine and
// returns a nil Timer.
type InlineScheduler struct{}

func (InlineScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	f()
	return nil
}

// Queue is a single goroutine task loop. Tasks dispatched to it run one at
// a time, in order, on the goroutine calling Run.
type Queue struct {
	tasks chan func()
	done  chan struct{}
}

func NewQueue(size int) *Queue {
	return &Queue{
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Dispatch enqueues f. It blocks while the queue is full and drops f once
// Run has returned.
func (q *Queue) Dispatch(f func()) {
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.tasks <- f:
	case <-q.done:
	}
}

// Run executes tasks until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) error {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-q.tasks:
			f()
		}
	}
}
