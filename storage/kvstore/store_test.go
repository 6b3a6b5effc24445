package kvstore

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/storage/storagetest"
)

// startEmbeddedNATS runs a JetStream-enabled server for the duration of the test.
func startEmbeddedNATS(t *testing.T) string {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("embedded NATS server not ready")
	}
	t.Cleanup(ns.Shutdown)

	return ns.ClientURL()
}

func uniqueBucket() string {
	return "tasks-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func TestStore_Contract(t *testing.T) {
	url := startEmbeddedNATS(t)

	storagetest.Run(t, func(t *testing.T) task.Repository {
		store, err := Open(context.Background(), url, uniqueBucket())
		require.NoError(t, err)
		return store
	})
}

func TestStore_ReopenExistingBucket(t *testing.T) {
	url := startEmbeddedNATS(t)
	ctx := context.Background()
	bucket := uniqueBucket()

	first, err := Open(ctx, url, bucket)
	require.NoError(t, err)
	tk := storagetest.NewTask(t, "Buy milk", 0)
	require.NoError(t, first.Insert(ctx, tk))
	require.NoError(t, first.Close())

	second, err := Open(ctx, url, bucket)
	require.NoError(t, err)
	defer second.Close()

	found, err := second.FindByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk.Name, found.Name)
}

func TestStore_InsertDuplicateID(t *testing.T) {
	url := startEmbeddedNATS(t)
	ctx := context.Background()

	store, err := Open(ctx, url, uniqueBucket())
	require.NoError(t, err)
	defer store.Close()

	tk := storagetest.NewTask(t, "once", 0)
	require.NoError(t, store.Insert(ctx, tk))
	assert.ErrorIs(t, store.Insert(ctx, tk), task.ErrStore)
}

func TestStore_ReplaceDoesNotResurrectDeletedTask(t *testing.T) {
	url := startEmbeddedNATS(t)
	ctx := context.Background()

	store, err := Open(ctx, url, uniqueBucket())
	require.NoError(t, err)
	defer store.Close()

	tk := storagetest.NewTask(t, "Buy milk", 0)
	require.NoError(t, store.Insert(ctx, tk))

	_, revision, err := store.get(ctx, tk.ID)
	require.NoError(t, err)

	// Delete lands between the read and the write.
	_, err = store.Remove(ctx, tk.ID)
	require.NoError(t, err)

	tk.Name = "Buy oat milk"
	data, err := json.Marshal(tk)
	require.NoError(t, err)
	assert.ErrorIs(t, store.replaceAt(ctx, tk.ID, data, revision), errRevisionMoved)

	_, err = store.FindByID(ctx, tk.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
	assert.ErrorIs(t, store.Replace(ctx, tk), task.ErrNotFound)
}

func TestStore_ReplaceAfterConcurrentWriteLastWins(t *testing.T) {
	url := startEmbeddedNATS(t)
	ctx := context.Background()

	store, err := Open(ctx, url, uniqueBucket())
	require.NoError(t, err)
	defer store.Close()

	tk := storagetest.NewTask(t, "Buy milk", 0)
	require.NoError(t, store.Insert(ctx, tk))

	_, revision, err := store.get(ctx, tk.ID)
	require.NoError(t, err)

	other := *tk
	other.Description = "2L"
	require.NoError(t, store.Replace(ctx, &other))

	data, err := json.Marshal(tk)
	require.NoError(t, err)
	assert.ErrorIs(t, store.replaceAt(ctx, tk.ID, data, revision), errRevisionMoved)

	tk.Status = task.StatusDone
	require.NoError(t, store.Replace(ctx, tk))

	found, err := store.FindByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, found.Status)
	assert.Empty(t, found.Description)
}

func TestOpen_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Open(ctx, "nats://127.0.0.1:1", "")
	assert.Error(t, err)
}
