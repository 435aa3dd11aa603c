package todo

import (
	"slices"
	"strings"

	"github.com/nissyi-gh/donewithit/internal/model"
)

// Project returns the tasks visible for v, ordered for display. It never
// changes the store and returns a fresh slice on every call.
func (s *Store) Project(v model.View) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return project(s.tasks, v, s.opts.Ordering)
}

func project(tasks []model.Task, v model.View, order Ordering) []model.Task {
	query := strings.ToLower(strings.TrimSpace(v.Search))

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		if !matchesTab(t, v.Tab) {
			continue
		}
		out = append(out, t.Clone())
	}

	switch order {
	case NewestFirst:
		slices.Reverse(out)
	case PinnedFirst:
		slices.SortStableFunc(out, func(a, b model.Task) int {
			return pinRank(a) - pinRank(b)
		})
	}
	return out
}

func matchesTab(t model.Task, tab model.Tab) bool {
	if tab == model.TabBin {
		return t.IsDeleted()
	}
	if t.IsDeleted() {
		return false
	}
	switch tab {
	case model.TabAll, "":
		return true
	case model.TabActive:
		return !t.Completed
	case model.TabCompleted:
		return t.Completed
	default:
		return t.CategoryLabel() == string(tab)
	}
}

func pinRank(t model.Task) int {
	if t.Pinned {
		return 0
	}
	return 1
}

// Stats counts the tasks outside the bin. Progress is 0 when there are none.
func (s *Store) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st model.Stats
	for _, t := range s.tasks {
		if t.IsDeleted() {
			continue
		}
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	if st.Total > 0 {
		st.Progress = float64(st.Completed) / float64(st.Total)
	}
	return st
}

// CategoryTabs returns the categories used by at least one task outside the
// bin, in creation order.
func (s *Store) CategoryTabs() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	used := make(map[string]bool)
	for _, t := range s.tasks {
		if !t.IsDeleted() {
			used[t.CategoryLabel()] = true
		}
	}

	var out []model.Category
	for _, c := range s.categories {
		if used[c.Name] {
			out = append(out, c)
		}
	}
	return out
}
