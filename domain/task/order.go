package task

import (
	"slices"
	"strings"
)

// SortNewestFirst orders tasks by CreatedAt descending, breaking ties by id.
func SortNewestFirst(tasks []Task) {
	slices.SortStableFunc(tasks, CompareNewestFirst)
}

// CompareNewestFirst is the comparison used by SortNewestFirst.
func CompareNewestFirst(a, b Task) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
