package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testRun(id string) domain.Run {
	return domain.Run{
		ID: id,
		Source: domain.Source{
			Name:    "eng",
			Service: domain.ServiceTracker,
			Config: map[string]string{
				"home":           "https://tracker.example.com",
				"basic.username": "bot",
				"basic.password": "s3cret",
			},
		},
		StartedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// ==================== Store Creation ====================

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DBFile), store.Path())

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.SaveRun(context.Background(), testRun("run-1")))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	run, err := second.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "eng", run.Source.Name)
}

func TestDefaultDataDir(t *testing.T) {
	assert.Equal(t, AppName, filepath.Base(DefaultDataDir()))
}

// ==================== Runs ====================

func TestStore_SaveRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, testRun("run-1")))
	require.NoError(t, store.SaveRun(ctx, testRun("run-1")), "saving twice is a no-op")

	run, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceTracker, run.Source.Service)
	assert.Equal(t, "******", run.Source.Config["basic.password"])
	assert.Equal(t, "bot", run.Source.Config["basic.username"])
	assert.True(t, run.StartedAt.Equal(testRun("").StartedAt))

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Documents ====================

func TestSink_Store(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	run := testRun("run-1")

	err := store.Sink().Store(ctx, run, map[string]any{
		"title":   "Broken build",
		"url":     "https://tracker.example.com/browse/ENG-7",
		"content": "fails on main",
		"labels":  []any{"ci"},
	})
	require.NoError(t, err)

	docs, err := store.ListDocuments(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "Broken build", doc.Title)
	assert.Equal(t, "https://tracker.example.com/browse/ENG-7", doc.URL)
	assert.Equal(t, "fails on main", doc.Fields["content"])
	assert.Equal(t, []any{"ci"}, doc.Fields["labels"])
	assert.False(t, doc.StoredAt.IsZero())
}

func TestSink_StoreWithoutURL(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Sink().Store(ctx, testRun("run-1"), map[string]any{"title": 42}))

	docs, err := store.ListDocuments(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].URL)
	assert.Empty(t, docs[0].Title)
}

func TestSink_ConcurrentStore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	run := testRun("run-1")
	sink := store.Sink()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := sink.Store(ctx, run, map[string]any{"url": fmt.Sprintf("u%d", i)}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	n, err := store.CountDocuments(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

// ==================== Failures ====================

func TestFailureRecorder_Record(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.FailureRecorder().Record(ctx, testRun("run-1"), "RequestError",
		"https://tracker.example.com/browse/ENG-7", errors.New("status 500"))
	store.FailureRecorder().Record(ctx, testRun("run-2"), "ParseError", "u2", nil)

	records, err := store.FailureStore().ListFailures(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, "RequestError", rec.ErrorKind)
	assert.Equal(t, "https://tracker.example.com/browse/ENG-7", rec.URL)
	assert.Equal(t, "status 500", rec.Cause)
	assert.Equal(t, "******", rec.SourceConfig["basic.password"])
	assert.WithinDuration(t, time.Now(), rec.RecordedAt, time.Minute)

	all, err := store.FailureStore().ListFailures(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFailureRecorder_RecordAfterCancel(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store.FailureRecorder().Record(ctx, testRun("run-1"), "RequestError",
		"https://wiki.example.com/x/1", context.Canceled)

	records, err := store.FailureStore().ListFailures(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://wiki.example.com/x/1", records[0].URL)
	assert.Equal(t, "context canceled", records[0].Cause)
}

func TestFailureRecorder_NeverFails(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.NotPanics(t, func() {
		store.FailureRecorder().Record(context.Background(), testRun("run-1"), "X", "u", errors.New("boom"))
	})
}

func TestListFailures_Empty(t *testing.T) {
	store := setupTestStore(t)

	records, err := store.FailureStore().ListFailures(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, records)
}
