package goroutine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestManager_GoCollectsErrors(t *testing.T) {
	// Arrange
	m := NewManager(4)
	errBoom := errors.New("boom")

	// Act
	m.Go(context.Background(), func(context.Context) error { return nil })
	m.Go(context.Background(), func(context.Context) error { return errBoom })
	err := m.Wait()

	// Assert
	if !errors.Is(err, errBoom) {
		t.Fatalf("Wait() error = %v, want %v", err, errBoom)
	}
}

func TestManager_RejectsOverLimit(t *testing.T) {
	// Arrange
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	m.Go(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	// Act
	m.Go(context.Background(), func(context.Context) error { return nil })

	// Assert
	if got := m.Rejected(); got != 1 {
		t.Fatalf("Rejected() = %d, want 1", got)
	}
	if got := m.Running(); got != 1 {
		t.Fatalf("Running() = %d, want 1", got)
	}

	close(release)
	if err := m.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestManager_SkipsAfterWait(t *testing.T) {
	m := NewManager(2)
	if err := m.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	ran := false
	m.Go(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})

	if ran {
		t.Fatalf("task ran after manager was closed")
	}
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)
	m.Go(context.Background(), func(context.Context) error { panic("bad") })

	if err := m.Wait(); !errors.Is(err, ErrPanicked) {
		t.Fatalf("Wait() error = %v, want ErrPanicked", err)
	}
}

func TestManager_GoReportsAdmission(t *testing.T) {
	m := NewManager(1)
	if !m.Go(context.Background(), func(context.Context) error { return nil }) {
		t.Fatalf("Go() = false on an idle manager")
	}
	_ = m.Wait()

	if m.Go(context.Background(), func(context.Context) error { return nil }) {
		t.Fatalf("Go() = true after Wait")
	}
}

func TestManager_SkipsCanceledContext(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := make(chan struct{}, 1)
	m.Go(ctx, func(context.Context) error {
		ran <- struct{}{}
		return nil
	})

	if err := m.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(ran) != 0 {
		t.Fatalf("task ran with a canceled context")
	}
}

func TestManager_WaitContextDeadline(t *testing.T) {
	// Arrange
	m := NewManager(1)
	release := make(chan struct{})
	defer close(release)
	m.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Act
	err := m.WaitContext(ctx)

	// Assert
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitContext() error = %v, want DeadlineExceeded", err)
	}
}

func TestManager_Every(t *testing.T) {
	// Arrange
	m := NewManager(2)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	ticks := 0
	done := make(chan struct{})

	// Act
	m.Every(ctx, "test", 5*time.Millisecond, func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		ticks++
		if ticks == 3 {
			close(done)
		}
		return errors.New("logged, not fatal")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Every did not tick three times")
	}
	cancel()

	// Assert
	if err := m.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}
