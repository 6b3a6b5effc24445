// Package viewstate holds the client-side view of the task list and the
// transitions applied to it.
package viewstate

import (
	"slices"

	"github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/ui/listview"
)

// NotificationKind is the tone of a notification.
type NotificationKind uint8

const (
	NotifySuccess NotificationKind = iota
	NotifyError
)

func (k NotificationKind) String() string {
	if k == NotifyError {
		return "error"
	}
	return "success"
}

// Notification is a one-shot message. Seq identifies it for dismissal.
type Notification struct {
	Kind    NotificationKind
	Message string
	Seq     uint64
}

// State is the client-side projection of the store plus UI flags.
type State struct {
	Tasks        []task.Task
	Loading      bool
	FormOpen     bool
	Editing      *task.Task // nil while creating
	Filter       listview.Filter
	Sort         listview.SortKey
	Notification *Notification
	LastSeq      uint64
}

// View derives the visible rows.
func (s State) View() listview.View {
	return listview.Derive(s.Tasks, s.Filter, s.Sort)
}

func (s State) clone() State {
	s.Tasks = slices.Clone(s.Tasks)
	if s.Editing != nil {
		editing := *s.Editing
		s.Editing = &editing
	}
	if s.Notification != nil {
		n := *s.Notification
		s.Notification = &n
	}
	return s
}

// Action is a state transition applied by Reduce.
type Action interface {
	isAction()
}

type (
	// RefreshStarted marks the list as loading.
	RefreshStarted struct{}
	// RefreshSucceeded replaces the list with a fresh fetch.
	RefreshSucceeded struct{ Tasks []task.Task }
	// RefreshFailed clears the loading flag and keeps the previous list.
	RefreshFailed struct{}
	// Notify shows a notification, replacing any prior one.
	Notify struct {
		Kind    NotificationKind
		Message string
	}
	// Dismiss clears the notification if it is still the one numbered Seq.
	Dismiss struct{ Seq uint64 }
	// OpenForm opens the task form. A nil Editing means a new task.
	OpenForm struct{ Editing *task.Task }
	// CloseForm closes the task form.
	CloseForm struct{}
	// SetFilter changes the visible status filter.
	SetFilter struct{ Filter listview.Filter }
	// SetSort changes the sort key.
	SetSort struct{ Sort listview.SortKey }
	// TaskRemoved drops a task from the local list.
	TaskRemoved struct{ ID string }
)

func (RefreshStarted) isAction()   {}
func (RefreshSucceeded) isAction() {}
func (RefreshFailed) isAction()    {}
func (Notify) isAction()           {}
func (Dismiss) isAction()          {}
func (OpenForm) isAction()         {}
func (CloseForm) isAction()        {}
func (SetFilter) isAction()        {}
func (SetSort) isAction()          {}
func (TaskRemoved) isAction()      {}

// Reduce returns the state after applying a. It never modifies s.
func Reduce(s State, a Action) State {
	next := s.clone()

	switch a := a.(type) {
	case RefreshStarted:
		next.Loading = true
	case RefreshSucceeded:
		next.Loading = false
		next.Tasks = slices.Clone(a.Tasks)
		if next.Tasks == nil {
			next.Tasks = []task.Task{}
		}
	case RefreshFailed:
		next.Loading = false
	case Notify:
		next.LastSeq++
		next.Notification = &Notification{Kind: a.Kind, Message: a.Message, Seq: next.LastSeq}
	case Dismiss:
		if next.Notification != nil && next.Notification.Seq == a.Seq {
			next.Notification = nil
		}
	case OpenForm:
		next.FormOpen = true
		next.Editing = nil
		if a.Editing != nil {
			editing := *a.Editing
			next.Editing = &editing
		}
	case CloseForm:
		next.FormOpen = false
		next.Editing = nil
	case SetFilter:
		next.Filter = a.Filter
	case SetSort:
		next.Sort = a.Sort
	case TaskRemoved:
		next.Tasks = slices.DeleteFunc(next.Tasks, func(t task.Task) bool {
			return t.ID == a.ID
		})
	}
	return next
}
