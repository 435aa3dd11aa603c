package prompt

import (
	"fmt"
	"strings"

	"github.com/nissyi-gh/donewithit/internal/model"
)

const yamlFormat = `Reply in the YAML format below. Output only the YAML code block and no other text.

` + "```yaml" + `
categories:
  - "Category name"
tasks:
  - title: "Task title"
    description: "What needs doing"
    category: "Category name"
    pinned: false
    reminder: "YYYY-MM-DD hh:mm"
` + "```" + `

Fields:
- categories: (optional) categories to create before the tasks
- title: (required) the task title
- description: (optional) a longer description
- category: (optional) one of the categories; omit for the default category
- pinned: (optional) true for tasks that should stay at the top
- reminder: (optional) local date and time for a reminder`

// GenerateNew returns a prompt for creating new tasks from scratch.
func GenerateNew(categories []model.Category) string {
	var sb strings.Builder

	sb.WriteString("You are a task management assistant.\n")
	sb.WriteString("Break the user's request down into small, concrete tasks.\n")
	writeCategories(&sb, categories)

	sb.WriteString("\n")
	sb.WriteString(yamlFormat)
	sb.WriteString("\n")
	return sb.String()
}

// GenerateForCategory returns a prompt for adding tasks to an existing
// category, listing the tasks it already holds.
func GenerateForCategory(category string, tasks []model.Task) string {
	var sb strings.Builder

	sb.WriteString("You are a task management assistant.\n")
	sb.WriteString(fmt.Sprintf("Suggest further tasks for the category %q.\n", category))

	if len(tasks) > 0 {
		sb.WriteString("\n## Existing tasks\n")
		for _, t := range tasks {
			status := "open"
			if t.Completed {
				status = "done"
			}
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", t.Title, status))
			if t.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", t.Description))
			}
		}
		sb.WriteString("\nTake the existing tasks into account and only add what is missing.\n")
	}
	sb.WriteString(fmt.Sprintf("Set category to %q on every task.\n", category))

	sb.WriteString("\n")
	sb.WriteString(yamlFormat)
	sb.WriteString("\n")
	return sb.String()
}

func writeCategories(sb *strings.Builder, categories []model.Category) {
	if len(categories) == 0 {
		return
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	sb.WriteString("\n## Existing categories\n")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\nPrefer these categories. Add a new one only when none fits.\n")
}
