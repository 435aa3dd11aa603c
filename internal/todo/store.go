package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nissyi-gh/donewithit/internal/model"
)

const maxIDAttempts = 8

// TaskOptions holds the optional fields of a new task.
type TaskOptions struct {
	Description string
	// Category defaults to the store's default category when empty.
	Category   string
	ReminderAt *time.Time
}

// Store holds the canonical task and category collections.
type Store struct {
	mu         sync.RWMutex
	tasks      []model.Task
	categories []model.Category
	loaded     bool

	notifier Notifier
	saver    Saver
	opts     Options
}

// New creates an empty store. notifier and saver may be nil, in which case
// reminders are unavailable and nothing is persisted.
func New(notifier Notifier, saver Saver, opts Options) *Store {
	return &Store{
		notifier: notifier,
		saver:    saver,
		opts:     opts.withDefaults(),
	}
}

// Load reads the persisted collections from src. A failed load leaves the
// affected collection empty and is returned as an error the caller may treat
// as non-fatal. Nothing is saved before Load has run.
func (s *Store) Load(ctx context.Context, src Source) error {
	tasks, tasksErr := loadBlob[model.Task](ctx, src, TasksKey)
	categories, categoriesErr := loadBlob[model.Category](ctx, src, CategoriesKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true

	var errs []error
	if tasksErr.err != nil {
		errs = append(errs, tasksErr.err)
	} else {
		s.tasks = tasks
		if s.repairIDsLocked() {
			s.saveTasksLocked()
		}
	}

	switch {
	case categoriesErr.err != nil:
		errs = append(errs, categoriesErr.err)
	case categoriesErr.found:
		s.categories = categories
	default:
		s.seedCategoriesLocked()
		s.saveCategoriesLocked()
	}

	s.opts.Logger.Printf("loaded %d tasks and %d categories", len(s.tasks), len(s.categories))
	return errors.Join(errs...)
}

type loadResult struct {
	found bool
	err   error
}

func loadBlob[T any](ctx context.Context, src Source, key string) ([]T, loadResult) {
	blob, ok, err := src.Load(ctx, key)
	if err != nil {
		return nil, loadResult{err: fmt.Errorf("load %s: %w", key, err)}
	}
	if !ok || len(blob) == 0 {
		return nil, loadResult{}
	}
	var out []T
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, loadResult{err: fmt.Errorf("decode %s: %w", key, err)}
	}
	return out, loadResult{found: true}
}

func (s *Store) repairIDsLocked() bool {
	seen := make(map[string]bool, len(s.tasks))
	repaired := false
	for i := range s.tasks {
		id := s.tasks[i].ID
		if id == "" || seen[id] {
			fresh := s.uniqueIDLocked()
			s.opts.Logger.Printf("task %q had a missing or duplicate id, assigned %s", id, fresh)
			s.tasks[i].ID = fresh
			id = fresh
			repaired = true
		}
		seen[id] = true
	}
	return repaired
}

func (s *Store) seedCategoriesLocked() {
	for _, name := range s.opts.Categories {
		name = strings.TrimSpace(name)
		if name == "" || model.IsBuiltin(name) || s.categoryIndexLocked(name) >= 0 {
			continue
		}
		s.categories = append(s.categories, model.Category{Name: name, Color: s.nextColorLocked()})
	}
}

// CreateTask appends a new task. A blank title is rejected with ErrEmptyTitle.
//
// When a reminder is requested but cannot be set up, the task is still created
// and returned together with a warning (see IsWarning).
func (s *Store) CreateTask(ctx context.Context, title string, opts TaskOptions) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}

	category, err := s.resolveCategory(opts.Category)
	if err != nil {
		return model.Task{}, err
	}

	t := model.Task{
		Title:       title,
		Description: strings.TrimSpace(opts.Description),
		Category:    category,
	}

	var warn error
	if opts.ReminderAt != nil {
		warn = s.scheduleReminder(ctx, &t, *opts.ReminderAt)
	}

	s.mu.Lock()
	t.ID = s.uniqueIDLocked()
	s.tasks = append(s.tasks, t)
	s.saveTasksLocked()
	s.mu.Unlock()

	return t.Clone(), warn
}

func (s *Store) resolveCategory(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.opts.DefaultCategory, nil
	}
	if name == s.opts.DefaultCategory {
		return name, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.categoryIndexLocked(name)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, name)
	}
	return s.categories[i].Name, nil
}

func (s *Store) scheduleReminder(ctx context.Context, t *model.Task, at time.Time) error {
	if !at.After(s.opts.Now()) {
		return fmt.Errorf("%w: %s", ErrReminderInPast, at.Format(time.RFC3339))
	}
	if s.notifier == nil {
		return fmt.Errorf("%w: no notifier configured", ErrReminderFailed)
	}
	handle, err := s.notifier.Schedule(ctx, at, reminderNotification(*t))
	if err != nil {
		s.opts.Logger.Printf("schedule reminder for %q: %v", t.Title, err)
		return fmt.Errorf("%w: %v", ErrReminderFailed, err)
	}
	t.ReminderAt = &at
	t.ReminderHandle = &handle
	return nil
}

// ToggleCompleted flips the completed flag. It returns false if id is unknown.
func (s *Store) ToggleCompleted(id string) bool {
	return s.update(id, func(t *model.Task) bool {
		t.Completed = !t.Completed
		return true
	})
}

// TogglePinned flips the pinned flag. It returns false if id is unknown.
func (s *Store) TogglePinned(id string) bool {
	return s.update(id, func(t *model.Task) bool {
		t.Pinned = !t.Pinned
		return true
	})
}

// Restore takes a task out of the bin. Its reminder stays cancelled.
func (s *Store) Restore(id string) bool {
	return s.update(id, func(t *model.Task) bool {
		if !t.IsDeleted() {
			return false
		}
		t.DeletedAt = nil
		return true
	})
}

func (s *Store) update(id string, fn func(t *model.Task) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || !fn(&s.tasks[i]) {
		return false
	}
	s.saveTasksLocked()
	return true
}

// SoftDelete moves a task to the bin and cancels its reminder. Deleting a task
// that is already in the bin is a no-op.
//
// A failed cancellation is returned as a warning; the handle is cleared either
// way so the reminder is never cancelled twice.
func (s *Store) SoftDelete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 || s.tasks[i].IsDeleted() {
		s.mu.Unlock()
		return false, nil
	}
	now := s.opts.Now()
	s.tasks[i].DeletedAt = &now
	handle := s.tasks[i].ReminderHandle
	s.tasks[i].ReminderHandle = nil
	s.saveTasksLocked()
	s.mu.Unlock()

	if handle == nil || s.notifier == nil {
		return true, nil
	}
	if err := s.notifier.Cancel(ctx, *handle); err != nil {
		s.opts.Logger.Printf("cancel reminder %s: %v", *handle, err)
		return true, fmt.Errorf("%w: %v", ErrCancelFailed, err)
	}
	return true, nil
}

// HardDelete removes a task for good. Only tasks already in the bin can be
// removed; for anything else it returns false.
func (s *Store) HardDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || !s.tasks[i].IsDeleted() {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.saveTasksLocked()
	return true
}

// EmptyBin removes every task in the bin and returns how many were removed.
func (s *Store) EmptyBin() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.IsDeleted() {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	clear(s.tasks[len(kept):])
	s.tasks = kept
	if removed > 0 {
		s.saveTasksLocked()
	}
	return removed
}

// CreateCategory adds a category with the next palette colour.
func (s *Store) CreateCategory(name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, ErrEmptyName
	}
	if model.IsBuiltin(name) {
		return model.Category{}, fmt.Errorf("%w: %s", ErrReservedName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryIndexLocked(name) >= 0 {
		return model.Category{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	c := model.Category{Name: name, Color: s.nextColorLocked()}
	s.categories = append(s.categories, c)
	s.saveCategoriesLocked()
	return c, nil
}

// RearmReminders reschedules reminders that were still pending when the
// collections were saved. Handles issued by an earlier process are replaced;
// reminders whose time has passed are dropped.
func (s *Store) RearmReminders(ctx context.Context) error {
	type pending struct {
		id string
		at time.Time
		n  model.Notification
	}

	s.mu.Lock()
	now := s.opts.Now()
	var jobs []pending
	changed := false
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.ReminderHandle == nil {
			continue
		}
		if !t.IsDeleted() && t.ReminderAt != nil && t.ReminderAt.After(now) {
			jobs = append(jobs, pending{id: t.ID, at: *t.ReminderAt, n: reminderNotification(*t)})
		}
		t.ReminderHandle = nil
		changed = true
	}
	if changed {
		s.saveTasksLocked()
	}
	s.mu.Unlock()

	if len(jobs) == 0 {
		return nil
	}
	if s.notifier == nil {
		return fmt.Errorf("%w: no notifier configured", ErrReminderFailed)
	}

	var errs []error
	for _, j := range jobs {
		handle, err := s.notifier.Schedule(ctx, j.at, j.n)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: task %s: %v", ErrReminderFailed, j.id, err))
			continue
		}
		if !s.update(j.id, func(t *model.Task) bool {
			if t.IsDeleted() {
				return false
			}
			t.ReminderHandle = &handle
			return true
		}) {
			// Deleted while we were scheduling.
			_ = s.notifier.Cancel(ctx, handle)
		}
	}
	return errors.Join(errs...)
}

// Tasks returns a copy of every task in insertion order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Task looks up a single task by id.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Categories returns a copy of every category in creation order.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// Category looks up a category by name, ignoring case.
func (s *Store) Category(name string) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.categoryIndexLocked(name)
	if i < 0 {
		return model.Category{}, false
	}
	return s.categories[i], true
}

// DefaultCategory returns the category new tasks get when none is given.
func (s *Store) DefaultCategory() string {
	return s.opts.DefaultCategory
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) categoryIndexLocked(name string) int {
	for i := range s.categories {
		if strings.EqualFold(s.categories[i].Name, name) {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueIDLocked() string {
	gen := s.opts.NewID
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			s.opts.Logger.Printf("id generator repeated itself %d times, falling back to uuid", attempt)
			gen = newID
		}
		id := gen()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *Store) nextColorLocked() string {
	return s.opts.Palette[len(s.categories)%len(s.opts.Palette)]
}

func (s *Store) saveTasksLocked() {
	if s.tasks == nil {
		s.tasks = []model.Task{}
	}
	s.saveLocked(TasksKey, s.tasks)
}

func (s *Store) saveCategoriesLocked() {
	if s.categories == nil {
		s.categories = []model.Category{}
	}
	s.saveLocked(CategoriesKey, s.categories)
}

func (s *Store) saveLocked(key string, v any) {
	if !s.loaded || s.saver == nil {
		return
	}
	blob, err := json.Marshal(v)
	if err != nil {
		s.opts.Logger.Printf("encode %s: %v", key, err)
		return
	}
	s.saver.Save(key, blob)
}
