package todo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissyi-gh/donewithit/internal/model"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type scheduled struct {
	at time.Time
	n  model.Notification
}

type fakeNotifier struct {
	mu        sync.Mutex
	next      int
	scheduled map[string]scheduled
	cancelled []string
	failWith  error
	cancelErr error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{scheduled: make(map[string]scheduled)}
}

func (f *fakeNotifier) Schedule(_ context.Context, at time.Time, n model.Notification) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	f.next++
	h := fmt.Sprintf("n%d", f.next)
	f.scheduled[h] = scheduled{at: at, n: n}
	return h, nil
}

func (f *fakeNotifier) Cancel(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, handle)
	return f.cancelErr
}

type fakeSaver struct {
	mu    sync.Mutex
	saves []string
	blobs map[string][]byte
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{blobs: make(map[string][]byte)}
}

func (f *fakeSaver) Save(key string, blob []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, key)
	f.blobs[key] = blob
}

func (f *fakeSaver) Load(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[key]
	return b, ok, nil
}

func (f *fakeSaver) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, k := range f.saves {
		if k == key {
			n++
		}
	}
	return n
}

type failingSource struct{ err error }

func (f failingSource) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func testOptions(order Ordering) Options {
	return Options{
		Categories: []string{"General", "Work", "Personal"},
		Ordering:   order,
		Now:        func() time.Time { return baseTime },
		NewID:      sequentialIDs(),
		Logger:     log.New(io.Discard, "", 0),
	}
}

func newTestStore(t *testing.T, order Ordering) (*Store, *fakeNotifier, *fakeSaver) {
	t.Helper()
	n := newFakeNotifier()
	sv := newFakeSaver()
	s := New(n, sv, testOptions(order))
	require.NoError(t, s.Load(context.Background(), newFakeSaver()))
	return s, n, sv
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestCreateTask_AppendsLiveTask(t *testing.T) {
	s, _, sv := newTestStore(t, PinnedFirst)

	task, err := s.CreateTask(context.Background(), "  Buy milk ", TaskOptions{Description: "2 litres"})
	require.NoError(t, err)

	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.Equal(t, "General", task.Category)
	assert.False(t, task.Completed)
	assert.False(t, task.IsDeleted())
	assert.Len(t, s.Tasks(), 1)
	assert.Equal(t, 1, sv.count(TasksKey))
}

func TestCreateTask_UniqueIDs(t *testing.T) {
	opts := testOptions(NewestFirst)
	opts.NewID = nil
	s := New(nil, nil, opts)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		task, err := s.CreateTask(context.Background(), fmt.Sprintf("task %d", i), TaskOptions{})
		require.NoError(t, err)
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}

func TestCreateTask_RepeatingGeneratorStillUnique(t *testing.T) {
	opts := testOptions(NewestFirst)
	opts.NewID = func() string { return "same" }
	s := New(nil, nil, opts)

	a, err := s.CreateTask(context.Background(), "a", TaskOptions{})
	require.NoError(t, err)
	b, err := s.CreateTask(context.Background(), "b", TaskOptions{})
	require.NoError(t, err)

	assert.Equal(t, "same", a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateTask_RejectsBlankTitle(t *testing.T) {
	s, _, sv := newTestStore(t, PinnedFirst)

	for _, title := range []string{"", "   "} {
		task, err := s.CreateTask(context.Background(), title, TaskOptions{})
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.False(t, IsWarning(err))
		assert.Empty(t, task.ID)
	}
	assert.Empty(t, s.Tasks())
	assert.Zero(t, sv.count(TasksKey))
}

func TestCreateTask_UnknownCategory(t *testing.T) {
	s, _, _ := newTestStore(t, PinnedFirst)

	_, err := s.CreateTask(context.Background(), "a", TaskOptions{Category: "Errands"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Empty(t, s.Tasks())
}

func TestCreateTask_CategoryMatchesStoredName(t *testing.T) {
	s, _, _ := newTestStore(t, PinnedFirst)

	task, err := s.CreateTask(context.Background(), "a", TaskOptions{Category: "work"})
	require.NoError(t, err)
	assert.Equal(t, "Work", task.Category)
}

func TestCreateTask_SchedulesReminder(t *testing.T) {
	s, n, _ := newTestStore(t, NewestFirst)
	at := baseTime.Add(time.Hour)

	task, err := s.CreateTask(context.Background(), "Pay rent", TaskOptions{Description: "by transfer", ReminderAt: &at})
	require.NoError(t, err)

	require.True(t, task.HasReminder())
	assert.Equal(t, at, *task.ReminderAt)
	got, ok := n.scheduled[*task.ReminderHandle]
	require.True(t, ok)
	assert.Equal(t, at, got.at)
	assert.Equal(t, "⏰ Reminder: Pay rent", got.n.Title)
	assert.Equal(t, "by transfer", got.n.Body)
}

func TestCreateTask_ReminderBodyFallback(t *testing.T) {
	s, n, _ := newTestStore(t, NewestFirst)
	at := baseTime.Add(time.Minute)

	task, err := s.CreateTask(context.Background(), "Stretch", TaskOptions{ReminderAt: &at})
	require.NoError(t, err)
	assert.Equal(t, "You have a task to complete!", n.scheduled[*task.ReminderHandle].n.Body)
}

func TestCreateTask_PastReminderIsDroppedWithWarning(t *testing.T) {
	s, n, _ := newTestStore(t, NewestFirst)

	for _, at := range []time.Time{baseTime, baseTime.Add(-time.Minute)} {
		task, err := s.CreateTask(context.Background(), "late", TaskOptions{ReminderAt: &at})
		assert.ErrorIs(t, err, ErrReminderInPast)
		assert.True(t, IsWarning(err))
		assert.NotEmpty(t, task.ID)
		assert.Nil(t, task.ReminderAt)
		assert.Nil(t, task.ReminderHandle)
	}
	assert.Len(t, s.Tasks(), 2)
	assert.Empty(t, n.scheduled)
}

func TestCreateTask_ScheduleFailureKeepsTask(t *testing.T) {
	s, n, _ := newTestStore(t, NewestFirst)
	n.failWith = errors.New("permission denied")
	at := baseTime.Add(time.Hour)

	task, err := s.CreateTask(context.Background(), "a", TaskOptions{ReminderAt: &at})
	assert.ErrorIs(t, err, ErrReminderFailed)
	assert.True(t, IsWarning(err))
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.HasReminder())
	assert.Len(t, s.Tasks(), 1)
}

func TestCreateTask_NoNotifier(t *testing.T) {
	s := New(nil, nil, testOptions(NewestFirst))
	at := baseTime.Add(time.Hour)

	task, err := s.CreateTask(context.Background(), "a", TaskOptions{ReminderAt: &at})
	assert.ErrorIs(t, err, ErrReminderFailed)
	assert.NotEmpty(t, task.ID)
}

func TestToggles(t *testing.T) {
	s, _, sv := newTestStore(t, PinnedFirst)
	task, err := s.CreateTask(context.Background(), "a", TaskOptions{})
	require.NoError(t, err)

	assert.True(t, s.ToggleCompleted(task.ID))
	assert.True(t, s.TogglePinned(task.ID))
	got, _ := s.Task(task.ID)
	assert.True(t, got.Completed)
	assert.True(t, got.Pinned)
	assert.False(t, got.IsDeleted())

	assert.True(t, s.ToggleCompleted(task.ID))
	got, _ = s.Task(task.ID)
	assert.False(t, got.Completed)
	assert.True(t, got.Pinned)

	assert.False(t, s.ToggleCompleted("missing"))
	assert.False(t, s.TogglePinned("missing"))
	assert.Equal(t, 4, sv.count(TasksKey))
}

func TestSoftDelete_CancelsReminderOnce(t *testing.T) {
	s, n, _ := newTestStore(t, NewestFirst)
	at := baseTime.Add(time.Hour)
	task, err := s.CreateTask(context.Background(), "a", TaskOptions{ReminderAt: &at})
	require.NoError(t, err)

	ok, err := s.SoftDelete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SoftDelete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{*task.ReminderHandle}, n.cancelled)
	got, _ := s.Task(task.ID)
	assert.Nil(t, got.ReminderHandle)
	require.NotNil(t, got.DeletedAt)
	assert.Equal(t, baseTime, *got.DeletedAt)
}

func TestSoftDelete_CancelFailureIsWarning(t *testing.T) {
	s, n, _ := newTestStore(t, NewestFirst)
	n.cancelErr = errors.New("gone")
	at := baseTime.Add(time.Hour)
	task, err := s.CreateTask(context.Background(), "a", TaskOptions{ReminderAt: &at})
	require.NoError(t, err)

	ok, err := s.SoftDelete(context.Background(), task.ID)
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrCancelFailed)
	assert.True(t, IsWarning(err))

	got, _ := s.Task(task.ID)
	assert.True(t, got.IsDeleted())
	assert.Nil(t, got.ReminderHandle)
}

func TestSoftDelete_UnknownID(t *testing.T) {
	s, _, _ := newTestStore(t, NewestFirst)
	ok, err := s.SoftDelete(context.Background(), "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRestore_KeepsFieldsButNotReminder(t *testing.T) {
	s, n, _ := newTestStore(t, PinnedFirst)
	at := baseTime.Add(time.Hour)
	created, err := s.CreateTask(context.Background(), "a", TaskOptions{Description: "d", Category: "Work", ReminderAt: &at})
	require.NoError(t, err)
	s.ToggleCompleted(created.ID)
	s.TogglePinned(created.ID)
	before, _ := s.Task(created.ID)

	_, err = s.SoftDelete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, s.Restore(created.ID))
	assert.False(t, s.Restore(created.ID))

	after, _ := s.Task(created.ID)
	assert.Nil(t, after.DeletedAt)
	assert.Nil(t, after.ReminderHandle)
	assert.False(t, after.HasReminder())

	before.ReminderHandle = nil
	assert.Equal(t, before, after)
	assert.Len(t, n.cancelled, 1)
	assert.Len(t, n.scheduled, 1)
}

func TestHardDelete(t *testing.T) {
	s, _, _ := newTestStore(t, PinnedFirst)
	a, _ := s.CreateTask(context.Background(), "a", TaskOptions{})
	b, _ := s.CreateTask(context.Background(), "b", TaskOptions{})

	assert.False(t, s.HardDelete(a.ID))
	assert.Len(t, s.Tasks(), 2)

	_, err := s.SoftDelete(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, s.HardDelete(a.ID))
	assert.False(t, s.HardDelete(a.ID))

	assert.Empty(t, s.Project(model.View{Tab: model.TabBin}))
	assert.Equal(t, []string{b.ID}, ids(s.Tasks()))
	_, ok := s.Task(a.ID)
	assert.False(t, ok)
}

func TestEmptyBin(t *testing.T) {
	s, _, _ := newTestStore(t, PinnedFirst)
	a, _ := s.CreateTask(context.Background(), "a", TaskOptions{})
	b, _ := s.CreateTask(context.Background(), "b", TaskOptions{})
	c, _ := s.CreateTask(context.Background(), "c", TaskOptions{})
	_, _ = s.SoftDelete(context.Background(), a.ID)
	_, _ = s.SoftDelete(context.Background(), c.ID)

	assert.Equal(t, 2, s.EmptyBin())
	assert.Equal(t, []string{b.ID}, ids(s.Tasks()))
	assert.Zero(t, s.EmptyBin())
}

func TestCreateCategory(t *testing.T) {
	s := New(nil, newFakeSaver(), Options{Logger: log.New(io.Discard, "", 0)})

	work, err := s.CreateCategory("Work")
	require.NoError(t, err)
	assert.Equal(t, "Work", work.Name)
	assert.Equal(t, DefaultPalette[0], work.Color)

	_, err = s.CreateCategory("work")
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.False(t, IsWarning(err))
	assert.Len(t, s.Categories(), 1)

	_, err = s.CreateCategory("  ")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = s.CreateCategory("bin")
	assert.ErrorIs(t, err, ErrReservedName)

	home, err := s.CreateCategory("Home")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette[1], home.Color)
	assert.Len(t, s.Categories(), 2)
}

func TestLoad_SuppressesSavesUntilLoaded(t *testing.T) {
	sv := newFakeSaver()
	s := New(nil, sv, testOptions(NewestFirst))

	_, err := s.CreateTask(context.Background(), "early", TaskOptions{})
	require.NoError(t, err)
	assert.Empty(t, sv.saves)
}

func TestLoad_ReadsLegacyBlobs(t *testing.T) {
	src := newFakeSaver()
	src.blobs[TasksKey] = []byte(`[
		{"id":"1","title":"Buy milk","description":"","completed":false,"reminder":null,"notificationId":null},
		{"id":"2","title":"Pay rent","description":"","completed":true,"reminder":null,"notificationId":null,"deletedAt":1700000000000}
	]`)
	src.blobs[CategoriesKey] = []byte(`[{"name":"Work","color":"#f00"}]`)

	sv := newFakeSaver()
	s := New(nil, sv, testOptions(NewestFirst))
	require.NoError(t, s.Load(context.Background(), src))

	assert.Equal(t, []string{"1", "2"}, ids(s.Tasks()))
	assert.Equal(t, []model.Category{{Name: "Work", Color: "#f00"}}, s.Categories())
	assert.Equal(t, []string{"1"}, ids(s.Project(model.View{Tab: model.TabAll})))
	assert.Empty(t, sv.saves)
}

func TestLoad_SeedsCategoriesOnce(t *testing.T) {
	sv := newFakeSaver()
	s := New(nil, sv, testOptions(NewestFirst))
	require.NoError(t, s.Load(context.Background(), sv))

	names := []string{}
	for _, c := range s.Categories() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"General", "Work", "Personal"}, names)
	assert.Equal(t, 1, sv.count(CategoriesKey))

	again := New(nil, sv, testOptions(NewestFirst))
	require.NoError(t, again.Load(context.Background(), sv))
	assert.Len(t, again.Categories(), 3)
	assert.Equal(t, 1, sv.count(CategoriesKey))
}

func TestLoad_FailureLeavesEmptyState(t *testing.T) {
	sv := newFakeSaver()
	s := New(nil, sv, testOptions(NewestFirst))

	err := s.Load(context.Background(), failingSource{err: errors.New("disk on fire")})
	assert.Error(t, err)
	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Categories())
	assert.Empty(t, sv.saves)

	_, err = s.CreateTask(context.Background(), "a", TaskOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, sv.count(TasksKey))
}

func TestLoad_CorruptBlob(t *testing.T) {
	src := newFakeSaver()
	src.blobs[TasksKey] = []byte(`{not json`)

	s := New(nil, nil, testOptions(NewestFirst))
	err := s.Load(context.Background(), src)
	assert.ErrorContains(t, err, "decode tasks")
	assert.Empty(t, s.Tasks())
}

func TestLoad_RepairsDuplicateIDs(t *testing.T) {
	src := newFakeSaver()
	src.blobs[TasksKey] = []byte(`[{"id":"1","title":"a"},{"id":"1","title":"b"},{"id":"","title":"c"}]`)

	sv := newFakeSaver()
	s := New(nil, sv, testOptions(NewestFirst))
	require.NoError(t, s.Load(context.Background(), src))

	got := ids(s.Tasks())
	assert.Equal(t, "1", got[0])
	assert.NotEqual(t, "1", got[1])
	assert.NotEmpty(t, got[2])
	assert.NotEqual(t, got[1], got[2])
	assert.Equal(t, 1, sv.count(TasksKey))
}

func TestRearmReminders(t *testing.T) {
	future := baseTime.Add(time.Hour)
	past := baseTime.Add(-time.Hour)
	src := newFakeSaver()
	src.blobs[TasksKey] = []byte(fmt.Sprintf(`[
		{"id":"1","title":"future","reminder":%q,"notificationId":"old-1"},
		{"id":"2","title":"past","reminder":%q,"notificationId":"old-2"},
		{"id":"3","title":"restored","reminder":%q,"notificationId":null},
		{"id":"4","title":"binned","reminder":%q,"notificationId":"old-4","deletedAt":1}
	]`, future.Format(time.RFC3339), past.Format(time.RFC3339), future.Format(time.RFC3339), future.Format(time.RFC3339)))

	n := newFakeNotifier()
	s := New(n, newFakeSaver(), testOptions(NewestFirst))
	require.NoError(t, s.Load(context.Background(), src))
	require.NoError(t, s.RearmReminders(context.Background()))

	assert.Len(t, n.scheduled, 1)
	first, _ := s.Task("1")
	require.NotNil(t, first.ReminderHandle)
	assert.Equal(t, "n1", *first.ReminderHandle)
	assert.Equal(t, "⏰ Reminder: future", n.scheduled["n1"].n.Title)

	for _, id := range []string{"2", "3", "4"} {
		task, _ := s.Task(id)
		assert.Nil(t, task.ReminderHandle, id)
	}
	assert.Empty(t, n.cancelled)
}

func TestRearmReminders_ReportsFailures(t *testing.T) {
	future := baseTime.Add(time.Hour)
	src := newFakeSaver()
	src.blobs[TasksKey] = []byte(fmt.Sprintf(`[{"id":"1","title":"a","reminder":%q,"notificationId":"old"}]`, future.Format(time.RFC3339)))

	n := newFakeNotifier()
	n.failWith = errors.New("closed")
	s := New(n, nil, testOptions(NewestFirst))
	require.NoError(t, s.Load(context.Background(), src))

	err := s.RearmReminders(context.Background())
	assert.ErrorIs(t, err, ErrReminderFailed)
	task, _ := s.Task("1")
	assert.Nil(t, task.ReminderHandle)
}
