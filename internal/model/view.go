package model

import "strings"

// Tab selects which tasks a view shows. Any value other than the built-ins
// names a category.
type Tab string

const (
	TabAll       Tab = "All"
	TabActive    Tab = "Active"
	TabCompleted Tab = "Completed"
	TabBin       Tab = "Bin"
)

// BuiltinTabs lists the fixed tabs in display order.
var BuiltinTabs = []Tab{TabAll, TabActive, TabCompleted, TabBin}

// IsBuiltin returns true if name matches a built-in tab, ignoring case.
func IsBuiltin(name string) bool {
	for _, tab := range BuiltinTabs {
		if strings.EqualFold(string(tab), name) {
			return true
		}
	}
	return false
}

// View is the active tab combined with the search text.
type View struct {
	Tab    Tab
	Search string
}

// Stats summarizes the tasks that are not in the bin.
type Stats struct {
	Completed int
	Total     int
	Progress  float64
}
