// Package kvstore persists tasks as JSON documents in a NATS JetStream key-value bucket.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Tsiatosika/Todo-project/domain/task"
)

// DefaultBucket is the bucket used when none is configured.
const DefaultBucket = "tasks"

// maxWriteAttempts bounds the read-then-write retries of Replace and Remove.
const maxWriteAttempts = 3

// errRevisionMoved reports that a key changed after it was read.
var errRevisionMoved = errors.New("task revision moved")

// Store implements task.Repository on a JetStream KV bucket keyed by task id.
type Store struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	bucket jetstream.KeyValue
}

var _ task.Repository = (*Store)(nil)

// Open connects to natsURL and gets or creates the named bucket.
func Open(ctx context.Context, natsURL, bucketName string) (*Store, error) {
	if bucketName == "" {
		bucketName = DefaultBucket
	}

	conn, err := nats.Connect(natsURL, nats.Name("todo-task-store"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	bucket, err := getOrCreateBucket(ctx, js, bucketName)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open %s bucket: %w", bucketName, err)
	}

	return &Store{conn: conn, js: js, bucket: bucket}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	bucket, err := js.KeyValue(ctx, name)
	if err == nil {
		return bucket, nil
	}

	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Task documents keyed by id",
		History:     1,
		Storage:     jetstream.FileStorage,
	})
}

// Insert stores a new task document.
func (s *Store) Insert(ctx context.Context, t *task.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return task.StoreFailure("encode task", err)
	}

	if _, err := s.bucket.Create(ctx, t.ID, data); err != nil {
		return task.StoreFailure("insert task", err)
	}
	return nil
}

// FindAll loads every document and orders them newest first.
func (s *Store) FindAll(ctx context.Context) ([]task.Task, error) {
	keys, err := s.bucket.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []task.Task{}, nil
		}
		return nil, task.StoreFailure("list task keys", err)
	}

	tasks := make([]task.Task, 0, len(keys))
	for _, key := range keys {
		t, err := s.FindByID(ctx, key)
		if err != nil {
			// Removed between listing and reading.
			if errors.Is(err, task.ErrNotFound) {
				continue
			}
			return nil, err
		}
		tasks = append(tasks, *t)
	}

	task.SortNewestFirst(tasks)
	return tasks, nil
}

// FindByID reads a single task document.
func (s *Store) FindByID(ctx context.Context, id string) (*task.Task, error) {
	t, _, err := s.get(ctx, id)
	return t, err
}

// get reads a task document together with its revision.
func (s *Store) get(ctx context.Context, id string) (*task.Task, uint64, error) {
	entry, err := s.bucket.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, 0, task.NotFound(id)
		}
		return nil, 0, task.StoreFailure("get task", err)
	}

	var t task.Task
	if err := json.Unmarshal(entry.Value(), &t); err != nil {
		return nil, 0, task.StoreFailure("decode task", err)
	}
	return &t, entry.Revision(), nil
}

// Replace overwrites an existing document. The write is conditional on the
// revision just read, so a key deleted in between stays deleted. Concurrent
// replaces are retried and the last one wins.
func (s *Store) Replace(ctx context.Context, t *task.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return task.StoreFailure("encode task", err)
	}

	for attempt := 1; ; attempt++ {
		_, revision, err := s.get(ctx, t.ID)
		if err != nil {
			return err
		}
		err = s.replaceAt(ctx, t.ID, data, revision)
		if !errors.Is(err, errRevisionMoved) {
			return err
		}
		if attempt == maxWriteAttempts {
			return task.StoreFailure("replace task", err)
		}
	}
}

func (s *Store) replaceAt(ctx context.Context, id string, data []byte, revision uint64) error {
	if _, err := s.bucket.Update(ctx, id, data, revision); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return errRevisionMoved
		}
		return task.StoreFailure("replace task", err)
	}
	return nil
}

// Remove deletes a document and returns its last value. Like Replace, the
// delete only applies to the revision that was read.
func (s *Store) Remove(ctx context.Context, id string) (*task.Task, error) {
	for attempt := 1; ; attempt++ {
		t, revision, err := s.get(ctx, id)
		if err != nil {
			return nil, err
		}

		err = s.bucket.Delete(ctx, id, jetstream.LastRevision(revision))
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, jetstream.ErrKeyExists) || attempt == maxWriteAttempts {
			return nil, task.StoreFailure("remove task", err)
		}
	}
}

// Ping round-trips to the NATS server.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.FlushWithContext(ctx)
}

// Close drains and closes the NATS connection.
func (s *Store) Close() error {
	s.conn.Close()
	return nil
}
