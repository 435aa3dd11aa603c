package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nissyi-gh/donewithit/internal/todo"
)

// ReminderLayout is the local date-time format used for reminders in YAML.
const ReminderLayout = "2006-01-02 15:04"

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Category    string `yaml:"category,omitempty"`
	Completed   bool   `yaml:"completed,omitempty"`
	Pinned      bool   `yaml:"pinned,omitempty"`
	Reminder    string `yaml:"reminder,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Categories []string   `yaml:"categories,omitempty"`
	Tasks      []YAMLTask `yaml:"tasks"`
}

// Result summarizes an import.
type Result struct {
	Created  int
	Warnings []error
}

// Import parses a YAML string and creates its categories and tasks in s.
// Categories that already exist are left alone. Categories named by a task but
// not listed are created on the fly.
func Import(ctx context.Context, s *todo.Store, yamlStr string) (Result, error) {
	var res Result

	var input YAMLInput
	if err := yaml.Unmarshal([]byte(yamlStr), &input); err != nil {
		return res, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(input.Tasks) == 0 && len(input.Categories) == 0 {
		return res, errors.New("no tasks found in YAML")
	}

	for _, name := range input.Categories {
		if err := ensureCategory(s, name); err != nil {
			return res, err
		}
	}

	for _, yt := range input.Tasks {
		if err := importTask(ctx, s, yt, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func importTask(ctx context.Context, s *todo.Store, yt YAMLTask, res *Result) error {
	if strings.TrimSpace(yt.Title) == "" {
		return errors.New("task title is required")
	}
	if err := ensureCategory(s, yt.Category); err != nil {
		return err
	}

	opts := todo.TaskOptions{
		Description: yt.Description,
		Category:    yt.Category,
	}
	if yt.Reminder != "" {
		at, err := ParseReminder(yt.Reminder)
		if err != nil {
			return fmt.Errorf("reminder for %q: %w", yt.Title, err)
		}
		opts.ReminderAt = &at
	}

	task, err := s.CreateTask(ctx, yt.Title, opts)
	if err != nil {
		if !todo.IsWarning(err) {
			return fmt.Errorf("add task %q: %w", yt.Title, err)
		}
		res.Warnings = append(res.Warnings, fmt.Errorf("%q: %w", yt.Title, err))
	}
	res.Created++

	if yt.Completed {
		s.ToggleCompleted(task.ID)
	}
	if yt.Pinned {
		s.TogglePinned(task.ID)
	}
	return nil
}

func ensureCategory(s *todo.Store, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == s.DefaultCategory() {
		return nil
	}
	if _, ok := s.Category(name); ok {
		return nil
	}
	if _, err := s.CreateCategory(name); err != nil && !errors.Is(err, todo.ErrDuplicateName) {
		return fmt.Errorf("create category %q: %w", name, err)
	}
	return nil
}

// ParseReminder accepts ReminderLayout in local time or RFC 3339.
func ParseReminder(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.ParseInLocation(ReminderLayout, v, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("want %q or RFC 3339, got %q", ReminderLayout, v)
	}
	return t, nil
}

// Export writes every category and every task outside the bin in the format
// Import reads.
func Export(s *todo.Store) ([]byte, error) {
	var out YAMLInput
	for _, c := range s.Categories() {
		out.Categories = append(out.Categories, c.Name)
	}
	for _, t := range s.Tasks() {
		if t.IsDeleted() {
			continue
		}
		yt := YAMLTask{
			Title:       t.Title,
			Description: t.Description,
			Category:    t.Category,
			Completed:   t.Completed,
			Pinned:      t.Pinned,
		}
		if t.HasReminder() {
			yt.Reminder = t.ReminderAt.In(time.Local).Format(ReminderLayout)
		}
		out.Tasks = append(out.Tasks, yt)
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return data, nil
}
