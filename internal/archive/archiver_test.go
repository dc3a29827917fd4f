package archive

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sdko-org/areacheck/internal/models"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu        sync.Mutex
	rows      []models.AccessLog
	deleteErr error
}

func (r *fakeRepo) Older(ctx context.Context, cutoff time.Time, limit int) ([]models.AccessLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AccessLog
	for _, row := range r.rows {
		if row.Timestamp.Before(cutoff) && len(out) < limit {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(ctx context.Context, ids []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	drop := make(map[uint]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := r.rows[:0]
	for _, row := range r.rows {
		if !drop[row.ID] {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

type memStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStorage) Put(ctx context.Context, key string, content []byte, contentType string) error {
	s.objects[key] = append([]byte(nil), content...)
	s.types[key] = contentType
	return nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func rows(n int, age time.Duration) []models.AccessLog {
	out := make([]models.AccessLog, n)
	for i := range out {
		out[i] = models.AccessLog{
			ID:        uint(i + 1),
			Timestamp: now.Add(-age).Add(time.Duration(i) * time.Second),
			Method:    "POST",
			Path:      "/calculate",
			Status:    200,
			Duration:  1500 * time.Microsecond,
			ClientIP:  "192.0.2.1",
			UserAgent: "probe \"quoted\"",
			BytesSent: 120,
		}
	}
	return out
}

func newTestArchiver(repo Repository, store *memStorage, batch int) *Archiver {
	logger, _ := logtest.NewNullLogger()
	return NewArchiver(logger, repo, store, Options{
		After: 24 * time.Hour,
		Batch: batch,
		Now:   func() time.Time { return now },
	})
}

func TestRunOnceMovesOldRows(t *testing.T) {
	repo := &fakeRepo{rows: append(rows(3, 48*time.Hour), models.AccessLog{ID: 99, Timestamp: now.Add(-time.Hour)})}
	store := newMemStorage()

	moved, err := newTestArchiver(repo, store, 10).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, moved)

	require.Len(t, repo.rows, 1)
	assert.Equal(t, uint(99), repo.rows[0].ID)

	require.Len(t, store.objects, 1)
	for key, body := range store.objects {
		assert.True(t, strings.HasPrefix(key, "access-logs/2026/10/17/"), key)
		assert.True(t, strings.HasSuffix(key, ".jsonl"), key)
		assert.Equal(t, "application/x-ndjson", store.types[key])

		lines := strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
		require.Len(t, lines, 3)

		var first map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, float64(1), first["id"])
		assert.Equal(t, "/calculate", first["path"])
		assert.Equal(t, float64(1500), first["durationMicros"])
		assert.Equal(t, `probe "quoted"`, first["userAgent"])
	}
}

func TestRunOnceBatches(t *testing.T) {
	repo := &fakeRepo{rows: rows(5, 48*time.Hour)}
	store := newMemStorage()

	moved, err := newTestArchiver(repo, store, 2).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, moved)
	assert.Empty(t, repo.rows)
	assert.Len(t, store.objects, 3)
}

func TestRunOnceNothingToDo(t *testing.T) {
	repo := &fakeRepo{rows: rows(2, time.Hour)}
	store := newMemStorage()

	moved, err := newTestArchiver(repo, store, 10).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Empty(t, store.objects)
}

func TestRunOnceDeleteFailureRemovesObject(t *testing.T) {
	repo := &fakeRepo{rows: rows(2, 48*time.Hour), deleteErr: errors.New("db down")}
	store := newMemStorage()

	moved, err := newTestArchiver(repo, store, 10).RunOnce(context.Background())
	require.Error(t, err)
	assert.Zero(t, moved)
	assert.Len(t, repo.rows, 2)
	assert.Empty(t, store.objects)
}

func TestStartStopsOnCancel(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	a := NewArchiver(logger, &fakeRepo{}, newMemStorage(), Options{Interval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("archiver did not stop")
	}
	assert.Equal(t, "Stopping access log archiver", hook.LastEntry().Message)
}
