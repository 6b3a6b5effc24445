// Package listview derives the visible task rows from a task list.
package listview

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Tsiatosika/Todo-project/domain/task"
)

// Filter selects which tasks are visible.
type Filter uint8

const (
	FilterAll Filter = iota
	FilterPending
	FilterDone
)

var filterNames = [...]string{"all", "pending", "done"}

func (f Filter) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("Filter(%d)", uint8(f))
}

// Next cycles to the following filter.
func (f Filter) Next() Filter {
	return (f + 1) % Filter(len(filterNames))
}

func (f Filter) keep(t task.Task) bool {
	switch f {
	case FilterPending:
		return t.Status == task.StatusPending
	case FilterDone:
		return t.Status == task.StatusDone
	default:
		return true
	}
}

// ParseFilter parses a filter name.
func ParseFilter(s string) (Filter, error) {
	for i, name := range filterNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Filter(i), nil
		}
	}
	return FilterAll, fmt.Errorf("unknown filter %q: want all, pending or done", s)
}

// SortKey orders the visible tasks.
type SortKey uint8

const (
	// SortByStatus puts pending before done, newest first within each.
	SortByStatus SortKey = iota
	// SortByName orders by name ascending, newest first on ties.
	SortByName
	// SortByCreatedAt orders newest first.
	SortByCreatedAt
)

var sortNames = [...]string{"status", "name", "createdAt"}

func (s SortKey) String() string {
	if int(s) < len(sortNames) {
		return sortNames[s]
	}
	return fmt.Sprintf("SortKey(%d)", uint8(s))
}

// Next cycles to the following sort key.
func (s SortKey) Next() SortKey {
	return (s + 1) % SortKey(len(sortNames))
}

func (s SortKey) compare(a, b task.Task) int {
	switch s {
	case SortByStatus:
		if a.Status != b.Status {
			if a.Status == task.StatusPending {
				return -1
			}
			return 1
		}
	case SortByName:
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
	}
	return task.CompareNewestFirst(a, b)
}

// ParseSort parses a sort key name.
func ParseSort(s string) (SortKey, error) {
	for i, name := range sortNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return SortKey(i), nil
		}
	}
	return SortByStatus, fmt.Errorf("unknown sort %q: want status, name or createdAt", s)
}

// Empty tells why a view has no rows.
type Empty uint8

const (
	EmptyNone Empty = iota
	EmptyNoTasks
	EmptyNoMatch
)

// Message is the text shown in place of the rows.
func (e Empty) Message() string {
	switch e {
	case EmptyNoTasks:
		return "No tasks yet. Add your first task!"
	case EmptyNoMatch:
		return "No tasks match this filter."
	default:
		return ""
	}
}

// Counts summarizes the whole list regardless of filter.
type Counts struct {
	Total   int
	Pending int
	Done    int
}

// Count tallies tasks by status.
func Count(tasks []task.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == task.StatusDone {
			c.Done++
		} else {
			c.Pending++
		}
	}
	return c
}

// View is the derived list.
type View struct {
	Rows   []task.Task
	Empty  Empty
	Counts Counts
	Filter Filter
	Sort   SortKey
}

// Derive filters and sorts tasks. The input slice is not modified.
func Derive(tasks []task.Task, filter Filter, sort SortKey) View {
	v := View{
		Rows:   make([]task.Task, 0, len(tasks)),
		Counts: Count(tasks),
		Filter: filter,
		Sort:   sort,
	}

	for _, t := range tasks {
		if filter.keep(t) {
			v.Rows = append(v.Rows, t)
		}
	}
	slices.SortStableFunc(v.Rows, sort.compare)

	switch {
	case len(tasks) == 0:
		v.Empty = EmptyNoTasks
	case len(v.Rows) == 0:
		v.Empty = EmptyNoMatch
	}
	return v
}
