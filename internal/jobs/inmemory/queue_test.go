package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-assistant/internal/jobs"
)

func TestQueueProcessesJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 2, store)
	t.Cleanup(func() { queue.Close() })

	handled := make(chan *jobs.MessageJob, 1)
	err := queue.Start(t.Context(), func(ctx context.Context, job *jobs.MessageJob) error {
		handled <- job
		return nil
	})
	require.NoError(t, err)

	job := &jobs.MessageJob{ChatID: 42, Text: "quanto gastei?", UpdateID: 7}
	require.NoError(t, queue.PublishMessage(t.Context(), job))

	select {
	case got := <-handled:
		assert.Equal(t, int64(42), got.ChatID)
		assert.Equal(t, "quanto gastei?", got.Text)
		assert.NotEmpty(t, got.JobID)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not handled")
	}

	// The store converges to completed once processJob finishes.
	require.Eventually(t, func() bool {
		stored, err := store.GetJob(t.Context(), job.JobID)
		return err == nil && stored.Status == jobs.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := store.GetJob(t.Context(), job.JobID)
	require.NoError(t, err)
	assert.NotNil(t, stored.StartedAt)
	assert.NotNil(t, stored.CompletedAt)
	assert.Empty(t, stored.Error)
}

func TestQueueFailedJobNotRetried(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	t.Cleanup(func() { queue.Close() })

	var mu sync.Mutex
	attempts := 0
	err := queue.Start(t.Context(), func(ctx context.Context, job *jobs.MessageJob) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("handler exploded")
	})
	require.NoError(t, err)

	job := &jobs.MessageJob{ChatID: 42, Text: "oi"}
	require.NoError(t, queue.PublishMessage(t.Context(), job))

	require.Eventually(t, func() bool {
		stored, err := store.GetJob(t.Context(), job.JobID)
		return err == nil && stored.Status == jobs.JobStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	// Give any erroneous re-enqueue a chance to show up.
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, attempts)

	stored, err := store.GetJob(t.Context(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, "handler exploded", stored.Error)
}

func TestQueueRejectsAfterClose(t *testing.T) {
	queue := NewQueue(1, 1, nil)
	require.NoError(t, queue.Close())

	err := queue.PublishMessage(t.Context(), &jobs.MessageJob{ChatID: 1})
	assert.ErrorContains(t, err, "closed")
}

func TestQueueStopWaitsForInflight(t *testing.T) {
	queue := NewQueue(1, 1, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	var finished bool
	var mu sync.Mutex

	require.NoError(t, queue.Start(context.Background(), func(ctx context.Context, job *jobs.MessageJob) error {
		close(started)
		<-release
		mu.Lock()
		finished = true
		mu.Unlock()
		return nil
	}))
	require.NoError(t, queue.PublishMessage(context.Background(), &jobs.MessageJob{ChatID: 1}))
	<-started

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	require.NoError(t, queue.Stop(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, finished)
}

func TestStoreListJobs(t *testing.T) {
	store := NewStore()
	ctx := t.Context()

	require.NoError(t, store.SaveJob(ctx, &jobs.MessageJob{JobID: "a", ChatID: 1, Status: jobs.JobStatusCompleted}))
	require.NoError(t, store.SaveJob(ctx, &jobs.MessageJob{JobID: "b", ChatID: 1, Status: jobs.JobStatusFailed}))
	require.NoError(t, store.SaveJob(ctx, &jobs.MessageJob{JobID: "c", ChatID: 2, Status: jobs.JobStatusCompleted}))

	byChat, err := store.ListJobs(ctx, jobs.JobFilter{ChatID: 1})
	require.NoError(t, err)
	assert.Len(t, byChat, 2)

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "b", byStatus[0].JobID)

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := t.Context()

	require.NoError(t, store.SaveJob(ctx, &jobs.MessageJob{JobID: "a", Text: "original"}))

	got, err := store.GetJob(ctx, "a")
	require.NoError(t, err)
	got.Text = "mutated"

	again, err := store.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Text)
}

func TestStoreGetJobMissing(t *testing.T) {
	store := NewStore()

	_, err := store.GetJob(t.Context(), "nope")
	assert.ErrorContains(t, err, "not found")
}
