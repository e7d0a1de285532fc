package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDo_ReturnsResult(t *testing.T) {
	p := New(2)
	got, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("Do() = %d, %v", got, err)
	}
	p.Wait()
}

func TestDo_PropagatesError(t *testing.T) {
	p := New(1)
	want := errors.New("boom")
	_, err := Do(context.Background(), p, func(ctx context.Context) (string, error) {
		return "", want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Do() err = %v, want %v", err, want)
	}
	p.Wait()
}

func TestNew_DefaultSize(t *testing.T) {
	if got := New(0).Size(); got != DefaultSize {
		t.Errorf("Size() = %d, want %d", got, DefaultSize)
	}
}

func TestDo_BoundsConcurrency(t *testing.T) {
	const size = 3
	p := New(size)
	var running, peak atomic.Int32
	release := make(chan struct{})

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := Do(context.Background(), p, func(ctx context.Context) (struct{}, error) {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				<-release
				running.Add(-1)
				return struct{}{}, nil
			})
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	for i := 0; i < 10; i++ {
		if err := <-errs; err != nil {
			t.Fatal(err)
		}
	}
	p.Wait()
	if got := peak.Load(); got > size {
		t.Errorf("peak concurrency = %d, want <= %d", got, size)
	}
}

func TestDo_AbandonedJobCompletes(t *testing.T) {
	p := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	finish := make(chan struct{})
	var completed atomic.Bool
	var jobCtxErr error

	errc := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, func(jobCtx context.Context) (int, error) {
			close(started)
			<-finish
			jobCtxErr = jobCtx.Err()
			completed.Store(true)
			return 1, nil
		})
		errc <- err
	}()

	<-started
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() err = %v, want context.Canceled", err)
	}

	close(finish)
	p.Wait()
	if !completed.Load() {
		t.Error("abandoned job should still run to completion")
	}
	if jobCtxErr != nil {
		t.Errorf("job context was cancelled: %v", jobCtxErr)
	}
}

func TestDo_CancelledWhileWaitingForSlot(t *testing.T) {
	p := New(1)
	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = Do(context.Background(), p, func(ctx context.Context) (int, error) {
			close(started)
			<-block
			return 0, nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	var ran atomic.Bool
	_, err := Do(ctx, p, func(ctx context.Context) (int, error) {
		ran.Store(true)
		return 0, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do() err = %v, want deadline exceeded", err)
	}

	close(block)
	p.Wait()
	if ran.Load() {
		t.Error("job must not start when the caller gave up waiting for a slot")
	}
}

func TestDo_RecoversPanic(t *testing.T) {
	p := New(1)
	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		panic("kaboom")
	})
	if err == nil {
		t.Fatal("expected an error from a panicking job")
	}
	p.Wait()
}

func TestDoDetached_RunsAfterCallerGivesUp(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	busy := make(chan struct{})
	go func() {
		_, _ = Do(context.Background(), p, func(ctx context.Context) (struct{}, error) {
			close(busy)
			<-release
			return struct{}{}, nil
		})
	}()
	<-busy

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Bool
	_, err := DoDetached(ctx, p, func(ctx context.Context) (struct{}, error) {
		if ctx.Err() != nil {
			t.Error("job context should not be cancelled")
		}
		ran.Store(true)
		return struct{}{}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("DoDetached() err = %v, want context.Canceled", err)
	}

	close(release)
	p.Wait()
	if !ran.Load() {
		t.Error("job should run once the slot is free")
	}
}

func TestDoDetached_ReturnsResult(t *testing.T) {
	p := New(1)
	got, err := DoDetached(context.Background(), p, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("DoDetached() = %q, %v", got, err)
	}
	p.Wait()
}
