package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.FixedZone("CET", 3600))

	t.Run("defaults to pending", func(t *testing.T) {
		task, err := New("Buy milk", "", nil, now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, task.Status)
		assert.Equal(t, now.UTC(), task.CreatedAt)
		_, err = ParseID(task.ID)
		assert.NoError(t, err)
	})

	t.Run("keeps supplied status", func(t *testing.T) {
		done := StatusDone
		task, err := New("Buy milk", "2L", &done, now)
		require.NoError(t, err)
		assert.Equal(t, StatusDone, task.Status)
		assert.Equal(t, "2L", task.Description)
	})

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := New(name, "", nil, now)
		assert.True(t, errors.Is(err, ErrValidation), "name %q", name)
	}
}

func TestNew_StatusProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9 ]{0,30}`).Draw(t, "name")
		supply := rapid.Bool().Draw(t, "supply")

		var status *Status
		want := StatusPending
		if supply {
			s := Status(rapid.IntRange(0, 1).Draw(t, "status"))
			status = &s
			want = s
		}

		task, err := New(name, "", status, time.Now())
		if err != nil {
			t.Fatalf("New(%q) error = %v", name, err)
		}
		if task.Status != want {
			t.Fatalf("status = %v, want %v", task.Status, want)
		}
	})
}

func TestTask_Apply(t *testing.T) {
	base := Task{ID: "id", Name: "Old", Description: "desc", Status: StatusPending}

	t.Run("partial", func(t *testing.T) {
		task := base
		done := StatusDone
		require.NoError(t, task.Apply(Fields{Status: &done}))
		assert.Equal(t, "Old", task.Name)
		assert.Equal(t, "desc", task.Description)
		assert.Equal(t, StatusDone, task.Status)
	})

	t.Run("empty name rejected and task untouched", func(t *testing.T) {
		task := base
		empty := ""
		desc := "new"
		err := task.Apply(Fields{Name: &empty, Description: &desc})
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, base, task)
	})

	t.Run("no fields", func(t *testing.T) {
		task := base
		require.NoError(t, task.Apply(Fields{}))
		assert.Equal(t, base, task)
	})
}

func TestTask_Toggled(t *testing.T) {
	task := Task{Name: "Buy milk", Description: "2L", Status: StatusPending}
	f := task.Toggled()
	require.NotNil(t, f.Status)
	assert.Equal(t, StatusDone, *f.Status)
	assert.Equal(t, "Buy milk", *f.Name)
	assert.Equal(t, "2L", *f.Description)
}

func TestParseID(t *testing.T) {
	_, err := ParseID("not-a-uuid")
	assert.True(t, errors.Is(err, ErrInvalidID))

	_, err = ParseID("507f1f77bcf86cd799439011")
	assert.True(t, errors.Is(err, ErrInvalidID))

	_, err = ParseID("0b8e5c1e-4a77-4c3c-9d4f-2f6c2b1d7a10")
	assert.NoError(t, err)
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "a", CreatedAt: t0},
		{ID: "c", CreatedAt: t0.Add(time.Hour)},
		{ID: "b", CreatedAt: t0},
	}
	SortNewestFirst(tasks)
	assert.Equal(t, []string{"c", "a", "b"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}
