package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsiatosika/Todo-project/modules/activity"
	"github.com/Tsiatosika/Todo-project/modules/api"
	taskmod "github.com/Tsiatosika/Todo-project/modules/task"
	"github.com/Tsiatosika/Todo-project/storage/sqlstore"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func startAPI(t *testing.T, opts ...api.Option) string {
	t.Helper()

	store, err := sqlstore.Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	port := taskmod.NewLocalPort(taskmod.NewService(store, nil, &mockLogger{}))
	opts = append([]api.Option{api.WithTaskPort(port), api.WithAccessLog(false)}, opts...)
	app := api.NewModule(0, &mockLogger{}, opts...).NewApp()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestCommands_AddListDelete(t *testing.T) {
	ctx := context.Background()
	url := startAPI(t)
	var out bytes.Buffer

	require.NoError(t, executeContext(ctx, &out, "list", "--api-url", url))
	assert.Contains(t, out.String(), "No tasks yet. Add your first task!")

	out.Reset()
	require.NoError(t, executeContext(ctx, &out, "add", "B", "--done", "--api-url", url))
	require.NoError(t, executeContext(ctx, &out, "add", "A", "--done", "--api-url", url))
	require.NoError(t, executeContext(ctx, &out, "add", "C", "-d", "later", "--api-url", url))

	out.Reset()
	require.NoError(t, executeContext(ctx, &out, "list", "--filter", "done", "--sort", "name", "--api-url", url))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Total: 3  Pending: 1  Done: 2", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[x] A  "))
	assert.True(t, strings.HasPrefix(lines[2], "[x] B  "))

	id := strings.Fields(lines[1])[2]
	out.Reset()
	require.NoError(t, executeContext(ctx, &out, "delete", id, "--api-url", url))
	assert.Contains(t, out.String(), `"A"`)

	out.Reset()
	require.NoError(t, executeContext(ctx, &out, "list", "--filter", "pending", "--api-url", url))
	assert.Contains(t, out.String(), "[ ] C")
	assert.NotContains(t, out.String(), " A ")
}

func TestCommands_Errors(t *testing.T) {
	ctx := context.Background()
	url := startAPI(t)
	var out bytes.Buffer

	assert.Error(t, executeContext(ctx, &out, "list", "--filter", "archived", "--api-url", url))
	assert.Error(t, executeContext(ctx, &out, "add", "  ", "--api-url", url))
	assert.Error(t, executeContext(ctx, &out, "delete", "not-an-id", "--api-url", url))
	assert.Error(t, executeContext(ctx, &out, "add", "--api-url", url))
}

func TestCommands_Activity(t *testing.T) {
	ctx := context.Background()
	var (
		mu   sync.Mutex
		feed []activity.Entry
	)
	url := startAPI(t, api.WithActivityFeed(func() []activity.Entry {
		mu.Lock()
		defer mu.Unlock()
		return append([]activity.Entry(nil), feed...)
	}))

	var out bytes.Buffer
	require.NoError(t, executeContext(ctx, &out, "activity", "--api-url", url))
	assert.Equal(t, "No activity yet.\n", out.String())

	mu.Lock()
	feed = []activity.Entry{
		{TaskID: "1", Kind: activity.KindCreated, Message: `Task "Buy milk" created`, Timestamp: time.Now()},
		{TaskID: "1", Kind: activity.KindDeleted, Message: `Task "Buy milk" deleted`, Timestamp: time.Now()},
	}
	mu.Unlock()
	out.Reset()
	require.NoError(t, executeContext(ctx, &out, "activity", "--limit", "1", "--api-url", url))
	assert.Contains(t, out.String(), `Task "Buy milk" deleted`)
	assert.NotContains(t, out.String(), "created")
}
