// Package todo owns the task and category collections and derives the
// filtered, ordered views the interface renders.
package todo

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nissyi-gh/donewithit/internal/model"
)

// Blob keys used for persistence.
const (
	TasksKey      = "tasks"
	CategoriesKey = "categories"
)

var (
	ErrEmptyTitle      = errors.New("title is empty")
	ErrEmptyName       = errors.New("category name is empty")
	ErrDuplicateName   = errors.New("category already exists")
	ErrReservedName    = errors.New("category name is reserved")
	ErrUnknownCategory = errors.New("unknown category")

	// Warnings: the mutation went through, but something around it did not.
	ErrReminderInPast = errors.New("reminder time is not in the future")
	ErrReminderFailed = errors.New("reminder could not be scheduled")
	ErrCancelFailed   = errors.New("reminder could not be cancelled")
)

// IsWarning reports whether err accompanies a mutation that still happened.
func IsWarning(err error) bool {
	return errors.Is(err, ErrReminderInPast) ||
		errors.Is(err, ErrReminderFailed) ||
		errors.Is(err, ErrCancelFailed)
}

// Notifier schedules and cancels reminder notifications.
type Notifier interface {
	Schedule(ctx context.Context, at time.Time, n model.Notification) (string, error)
	Cancel(ctx context.Context, handle string) error
}

// Saver receives the serialized collections after every mutation. Save must
// not block, and saves must reach storage in call order.
type Saver interface {
	Save(key string, blob []byte)
}

// Source loads previously persisted blobs. ok is false when key was never saved.
type Source interface {
	Load(ctx context.Context, key string) (blob []byte, ok bool, err error)
}

// Ordering decides how Project orders the tasks it keeps.
type Ordering int

const (
	// NewestFirst reverses insertion order.
	NewestFirst Ordering = iota
	// PinnedFirst keeps insertion order but moves pinned tasks to the front.
	PinnedFirst
)

// DefaultPalette holds the colours assigned to new categories in turn.
var DefaultPalette = []string{"39", "205", "148", "214", "141", "81", "203", "227"}

// Options configures a Store. Zero values fall back to sensible defaults.
type Options struct {
	DefaultCategory string
	// Categories are installed when no categories were ever persisted.
	Categories []string
	Palette    []string
	Ordering   Ordering
	Now        func() time.Time
	NewID      func() string
	Logger     *log.Logger
}

func (o Options) withDefaults() Options {
	if o.DefaultCategory == "" {
		o.DefaultCategory = model.DefaultCategory
	}
	if len(o.Palette) == 0 {
		o.Palette = DefaultPalette
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = newID
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func reminderNotification(t model.Task) model.Notification {
	body := t.Description
	if body == "" {
		body = "You have a task to complete!"
	}
	return model.Notification{
		Title: "⏰ Reminder: " + t.Title,
		Body:  body,
	}
}
