// Package notify delivers task reminders inside the running process.
package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nissyi-gh/donewithit/internal/model"
)

var (
	ErrUnknownHandle = errors.New("unknown notification handle")
	ErrClosed        = errors.New("scheduler closed")
)

const defaultBuffer = 16

// Fired is a reminder whose time has come.
type Fired struct {
	Handle       string
	Notification model.Notification
	At           time.Time
}

// Scheduler arms one timer per reminder and publishes fired reminders on C.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fired  map[string]bool
	out    chan Fired
	closed bool
	logger *log.Logger
	now    func() time.Time
}

// NewScheduler creates a scheduler whose channel holds up to buffer undelivered
// reminders. A nil logger uses log.Default().
func NewScheduler(buffer int, logger *log.Logger) *Scheduler {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		fired:  make(map[string]bool),
		out:    make(chan Fired, buffer),
		logger: logger,
		now:    time.Now,
	}
}

// Schedule arms a reminder for at and returns its handle. A time in the past
// fires immediately.
func (s *Scheduler) Schedule(ctx context.Context, at time.Time, n model.Notification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	handle := uuid.NewString()
	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timers[handle] = time.AfterFunc(delay, func() { s.fire(handle, at, n) })
	return handle, nil
}

// Cancel disarms the reminder behind handle. Cancelling a reminder that has
// already fired does nothing.
func (s *Scheduler) Cancel(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired[handle] {
		delete(s.fired, handle)
		return nil
	}
	t, ok := s.timers[handle]
	if !ok {
		return ErrUnknownHandle
	}
	t.Stop()
	delete(s.timers, handle)
	return nil
}

// C returns the channel fired reminders are delivered on.
func (s *Scheduler) C() <-chan Fired {
	return s.out
}

// Pending returns the number of armed reminders.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops every armed timer. Reminders already on C stay readable.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for h, t := range s.timers {
		t.Stop()
		delete(s.timers, h)
	}
}

func (s *Scheduler) fire(handle string, at time.Time, n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, armed := s.timers[handle]; !armed || s.closed {
		return
	}
	delete(s.timers, handle)
	s.fired[handle] = true

	select {
	case s.out <- Fired{Handle: handle, Notification: n, At: at}:
	default:
		s.logger.Printf("notification buffer full, dropping reminder %q", n.Title)
	}
}
