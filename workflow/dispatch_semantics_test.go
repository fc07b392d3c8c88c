package workflow

import (
	"sync"
	"testing"
)

// NOTE: These tests are intentionally DB-free. They validate the intended
// outbox semantics:
// - a claimed row is handed to exactly one dispatcher, even under concurrency
// - rows that keep failing go terminal instead of retrying forever
//
// Full DB+PubSub integration runs live in the models package tests.

type fakeOutbox struct {
	mu       sync.Mutex
	claimed  map[int]string
	attempts map[int]int
	dead     map[int]bool
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{
		claimed:  map[int]string{},
		attempts: map[int]int{},
		dead:     map[int]bool{},
	}
}

// claim mirrors the SKIP LOCKED batch claim: a row already held by another
// dispatcher is silently skipped.
func (o *fakeOutbox) claim(dispatcherID string, ids []int) []int {
	o.mu.Lock()
	defer o.mu.Unlock()

	var got []int
	for _, id := range ids {
		if _, held := o.claimed[id]; held || o.dead[id] {
			continue
		}
		o.claimed[id] = dispatcherID
		o.attempts[id]++
		got = append(got, id)
	}
	return got
}

func (o *fakeOutbox) fail(id int, maxAttempts int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.claimed, id)
	if o.attempts[id] >= maxAttempts {
		o.dead[id] = true
	}
}

func TestConcurrentClaimHandsEachRowToOneDispatcher(t *testing.T) {
	o := newFakeOutbox()
	rows := []int{1, 2, 3, 4, 5, 6, 7, 8}

	results := make([][]int, 10)
	var wg sync.WaitGroup
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = o.claim("dispatcher", rows)
		}(i)
	}
	wg.Wait()

	seen := map[int]int{}
	for _, batch := range results {
		for _, id := range batch {
			seen[id]++
		}
	}
	for _, id := range rows {
		if seen[id] != 1 {
			t.Errorf("row %d claimed %d times, want exactly 1", id, seen[id])
		}
	}
}

func TestPoisonRowGoesDeadAfterMaxAttempts(t *testing.T) {
	const maxAttempts = 20
	o := newFakeOutbox()

	for i := 0; i < maxAttempts+5; i++ {
		got := o.claim("dispatcher", []int{1})
		if o.dead[1] {
			if len(got) != 0 {
				t.Fatalf("dead row must not be reclaimed, got %v", got)
			}
			break
		}
		if len(got) != 1 {
			t.Fatalf("live row should be claimable, got %v", got)
		}
		o.fail(1, maxAttempts)
	}

	if !o.dead[1] {
		t.Fatal("row should be terminal after max attempts")
	}
	if o.attempts[1] != maxAttempts {
		t.Fatalf("attempts: got %d, want %d", o.attempts[1], maxAttempts)
	}
}

func TestNewActivityDispatcherDefaults(t *testing.T) {
	d := NewActivityDispatcher(nil, nil)
	if d.DispatcherID == "" {
		t.Error("dispatcher must carry an identity for lock ownership")
	}
	if d.MaxAttempts <= 0 {
		t.Error("dispatcher must bound retries")
	}
	if d.LockTimeout <= 0 {
		t.Error("stale lock reclaim needs a positive timeout")
	}
	if d.InitialBackoff <= 0 || d.PollInterval <= 0 || d.BatchSize <= 0 {
		t.Errorf("dispatcher defaults not set: %+v", d)
	}
}
