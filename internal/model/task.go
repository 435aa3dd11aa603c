package model

import "time"

// DefaultCategory is the label shown for tasks that carry no category.
const DefaultCategory = "General"

// Task represents a single to-do entry.
type Task struct {
	ID          string
	Title       string
	Description string
	Category    string
	Completed   bool
	Pinned      bool
	ReminderAt  *time.Time
	// ReminderHandle is the notifier's reference to the scheduled reminder.
	// It is cleared once the reminder is cancelled.
	ReminderHandle *string
	// DeletedAt is set while the task sits in the bin.
	DeletedAt *time.Time
}

// IsDeleted returns true if the task is in the bin.
func (t Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// HasReminder returns true if a reminder is still scheduled for the task.
func (t Task) HasReminder() bool {
	return t.ReminderAt != nil && t.ReminderHandle != nil
}

// CategoryLabel returns the category name, falling back to DefaultCategory.
func (t Task) CategoryLabel() string {
	if t.Category == "" {
		return DefaultCategory
	}
	return t.Category
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	c := t
	if t.ReminderAt != nil {
		at := *t.ReminderAt
		c.ReminderAt = &at
	}
	if t.ReminderHandle != nil {
		h := *t.ReminderHandle
		c.ReminderHandle = &h
	}
	if t.DeletedAt != nil {
		d := *t.DeletedAt
		c.DeletedAt = &d
	}
	return c
}

// Category groups tasks by name.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Notification is the content of a reminder.
type Notification struct {
	Title string
	Body  string
}
