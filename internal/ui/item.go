package ui

import (
	"fmt"

	"github.com/nissyi-gh/donewithit/internal/model"
)

// TaskItem wraps model.Task to satisfy the list.DefaultItem interface.
type TaskItem struct {
	Task model.Task
	// ShowCategory is false on a category tab, where the label is redundant.
	ShowCategory bool
}

func (i TaskItem) Title() string {
	check := "[ ]"
	if i.Task.Completed {
		check = "[x]"
	}
	pinMark := ""
	if i.Task.Pinned {
		pinMark = "📌 "
	}
	reminderMark := ""
	if i.Task.HasReminder() {
		reminderMark = "⏰ "
	}
	label := ""
	if i.ShowCategory {
		label = "  [" + i.Task.CategoryLabel() + "]"
	}
	return fmt.Sprintf("%s %s%s%s%s", check, pinMark, reminderMark, i.Task.Title, label)
}

func (i TaskItem) Description() string {
	return i.Task.Description
}

func (i TaskItem) FilterValue() string {
	return i.Task.Title
}
