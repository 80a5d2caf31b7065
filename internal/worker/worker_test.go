package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
)

type mockProcessor struct {
	mu          sync.Mutex
	ids         []string
	err         error
	hadDeadline bool

	started chan string   // signals when a job begins, if set
	release chan struct{} // blocks jobs until closed, if set
}

func (m *mockProcessor) Process(ctx context.Context, digestID string) error {
	if m.started != nil {
		m.started <- digestID
	}
	if m.release != nil {
		<-m.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := ctx.Deadline(); ok {
		m.hadDeadline = true
	}
	m.ids = append(m.ids, digestID)
	return m.err
}

func (m *mockProcessor) processed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

func TestPoolProcessesSubmittedJobs(t *testing.T) {
	processor := &mockProcessor{}
	pool := New(processor, 2, 8)

	for _, id := range []string{"digest-1", "digest-2", "digest-3"} {
		if err := pool.Submit(id); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	pool.Stop()

	got := processor.processed()
	sort.Strings(got)
	want := []string{"digest-1", "digest-2", "digest-3"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d processed jobs, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i] != id {
			t.Errorf("Expected job %q, got %q", id, got[i])
		}
	}
	if processor.hadDeadline {
		t.Error("Expected jobs to run without a deadline")
	}
}

func TestSubmitReportsFullQueue(t *testing.T) {
	processor := &mockProcessor{
		started: make(chan string, 1),
		release: make(chan struct{}),
	}
	pool := New(processor, 1, 1)

	// Occupy the single worker, then fill the single queue slot
	if err := pool.Submit("digest-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	<-processor.started
	if err := pool.Submit("digest-2"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := pool.Submit("digest-3"); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}

	close(processor.release)
	<-processor.started
	pool.Stop()

	if got := processor.processed(); len(got) != 2 {
		t.Errorf("Expected 2 processed jobs, got %v", got)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	pool := New(&mockProcessor{}, 1, 1)
	pool.Stop()

	if err := pool.Submit("digest-1"); !errors.Is(err, ErrStopped) {
		t.Errorf("Expected ErrStopped, got %v", err)
	}

	// A second stop is a no-op
	pool.Stop()
}

func TestPoolDefaults(t *testing.T) {
	processor := &mockProcessor{}
	pool := New(processor, 0, 0)

	if cap(pool.jobs) != 64 {
		t.Errorf("Expected default queue size 64, got %d", cap(pool.jobs))
	}
	if err := pool.Submit("digest-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	pool.Stop()

	if got := processor.processed(); len(got) != 1 {
		t.Errorf("Expected 1 processed job, got %v", got)
	}
}

func TestJobErrorDoesNotStopPool(t *testing.T) {
	processor := &mockProcessor{err: errors.New("processing failed")}
	pool := New(processor, 1, 4)

	if err := pool.Submit("digest-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := pool.Submit("digest-2"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	pool.Stop()

	if got := processor.processed(); len(got) != 2 {
		t.Errorf("Expected both jobs attempted, got %v", got)
	}
}
