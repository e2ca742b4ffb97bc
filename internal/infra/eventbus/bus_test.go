package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func event(id string) domain.CommentCreated {
	return domain.CommentCreated{Comment: domain.Comment{ID: id, TaskID: "task-" + id}}
}

func TestBus_SyncDeliversInline(t *testing.T) {
	bus := New(0, nil)
	var got []string
	bus.Subscribe(func(_ context.Context, evt domain.CommentCreated) error {
		got = append(got, "first:"+evt.Comment.ID)
		return nil
	})
	bus.Subscribe(func(_ context.Context, evt domain.CommentCreated) error {
		got = append(got, "second:"+evt.Comment.ID)
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), event("c1")))

	assert.Equal(t, []string{"first:c1", "second:c1"}, got)
	require.NoError(t, bus.Close())
}

func TestBus_SyncJoinsErrors(t *testing.T) {
	bus := New(0, nil)
	errA := errors.New("handler a")
	errB := errors.New("handler b")
	bus.Subscribe(func(context.Context, domain.CommentCreated) error { return errA })
	bus.Subscribe(func(context.Context, domain.CommentCreated) error { return errB })

	err := bus.Publish(context.Background(), event("c1"))

	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
}

func TestBus_QueuedPreservesOrder(t *testing.T) {
	bus := New(4, nil)
	var (
		mu  sync.Mutex
		got []string
	)
	bus.Subscribe(func(_ context.Context, evt domain.CommentCreated) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, evt.Comment.ID)
		return nil
	})

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		require.NoError(t, bus.Publish(context.Background(), event(id)))
	}
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, ids, got)
}

func TestBus_QueuedLogsErrors(t *testing.T) {
	logger := testutil.NewMockLogger()
	bus := New(1, logger)
	bus.Subscribe(func(context.Context, domain.CommentCreated) error {
		return errors.New("launch failed")
	})

	require.NoError(t, bus.Publish(context.Background(), event("c1")))
	require.NoError(t, bus.Close())

	assert.True(t, logger.HasEntry("ERROR", "launch failed"))
}

func TestBus_QueuedHandlerOutlivesPublisherContext(t *testing.T) {
	bus := New(1, nil)
	handled := make(chan error, 1)
	bus.Subscribe(func(ctx context.Context, _ domain.CommentCreated) error {
		handled <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, event("c1")))
	cancel()
	require.NoError(t, bus.Close())

	select {
	case err := <-handled:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	for _, size := range []int{0, 2} {
		bus := New(size, nil)
		require.NoError(t, bus.Close())
		require.NoError(t, bus.Close())

		err := bus.Publish(context.Background(), event("late"))

		require.ErrorIs(t, err, domain.ErrBusClosed)
	}
}

func TestBus_PublishBlockedByFullQueueHonorsContext(t *testing.T) {
	bus := New(1, nil)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	bus.Subscribe(func(context.Context, domain.CommentCreated) error {
		started <- struct{}{}
		<-release
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), event("busy")))
	<-started
	require.NoError(t, bus.Publish(context.Background(), event("queued")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := bus.Publish(ctx, event("overflow"))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, bus.Close())
}
