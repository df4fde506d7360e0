package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestSupervisor_StartsAllWorkers(t *testing.T) {
	s := NewSupervisor()

	var started atomic.Int32
	for i := 0; i < 3; i++ {
		s.Add("worker", func(ctx context.Context) error {
			started.Add(1)
			return blockUntilDone(ctx)
		}, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	assert.Eventually(t, func() bool { return started.Load() == 3 }, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, s.Wait(ctx))
}

func TestSupervisor_ClosesInReverseOrder(t *testing.T) {
	s := NewSupervisor()

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"netmon", "api", "advertise"} {
		s.Add(name, blockUntilDone, func() error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	require.NoError(t, s.Wait(ctx))

	assert.Equal(t, []string{"advertise", "api", "netmon"}, order)
}

func TestSupervisor_FailureCancelsOthers(t *testing.T) {
	s := NewSupervisor()
	workerErr := errors.New("socket closed by peer")

	var sawCancel atomic.Bool
	s.Add("netmon", func(ctx context.Context) error {
		return workerErr
	}, nil)
	s.Add("api", func(ctx context.Context) error {
		<-ctx.Done()
		sawCancel.Store(true)
		return nil
	}, nil)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	done := make(chan error, 1)
	go func() { done <- s.Wait(ctx) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, workerErr)
		assert.Contains(t, err.Error(), "netmon: ")
		assert.True(t, sawCancel.Load())
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after a worker failed")
	}
}

func TestSupervisor_OnlyFirstErrorReturned(t *testing.T) {
	s := NewSupervisor()
	firstErr := errors.New("first")
	secondErr := errors.New("second")

	release := make(chan struct{})
	s.Add("first", func(ctx context.Context) error {
		defer close(release)
		return firstErr
	}, nil)
	s.Add("second", func(ctx context.Context) error {
		<-release
		<-ctx.Done()
		return secondErr
	}, nil)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	err := s.Wait(ctx)
	assert.ErrorIs(t, err, firstErr)
	assert.NotErrorIs(t, err, secondErr)
}

func TestSupervisor_CloseErrorIgnored(t *testing.T) {
	s := NewSupervisor()
	s.Add("worker", blockUntilDone, func() error { return errors.New("close error") })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.NoError(t, s.Wait(ctx))
}

func TestSupervisor_StartTwice(t *testing.T) {
	s := NewSupervisor()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx))
}

func TestSupervisor_WaitWithoutStart(t *testing.T) {
	s := NewSupervisor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, s.Wait(ctx))
}

func TestSupervisor_LateWorkerNotRun(t *testing.T) {
	s := NewSupervisor()
	s.Add("early", blockUntilDone, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	var closed atomic.Bool
	s.Add("late", func(ctx context.Context) error {
		t.Error("late worker must not run")
		return nil
	}, func() error {
		closed.Store(true)
		return nil
	})

	cancel()
	require.NoError(t, s.Wait(ctx))
	assert.False(t, closed.Load())
}
