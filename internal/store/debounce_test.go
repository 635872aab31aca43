package store

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type saveRecorder struct {
	mu     sync.Mutex
	states []*State
	fail   bool
}

func (r *saveRecorder) save(st *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("disk full")
	}
	r.states = append(r.states, st)
	return nil
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *saveRecorder) last() *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return nil
	}
	return r.states[len(r.states)-1]
}

func TestSaverCoalescesRapidWrites(t *testing.T) {
	rec := &saveRecorder{}
	s := NewSaver(rec.save, 30*time.Millisecond)

	for v := 1; v <= 5; v++ {
		s.Queue(&State{Volume: float64(v)})
	}
	time.Sleep(100 * time.Millisecond)

	if n := rec.count(); n != 1 {
		t.Fatalf("saved %d times, want 1", n)
	}
	if got := rec.last().Volume; got != 5 {
		t.Errorf("saved volume = %v, want the final state 5", got)
	}
}

func TestSaverWritesAgainAfterWindow(t *testing.T) {
	rec := &saveRecorder{}
	s := NewSaver(rec.save, 20*time.Millisecond)

	s.Queue(&State{Volume: 1})
	time.Sleep(60 * time.Millisecond)
	s.Queue(&State{Volume: 2})
	time.Sleep(60 * time.Millisecond)

	if n := rec.count(); n != 2 {
		t.Fatalf("saved %d times, want 2", n)
	}
}

func TestSaverRetriesLatestAfterFailure(t *testing.T) {
	rec := &saveRecorder{fail: true}
	s := NewSaver(rec.save, 20*time.Millisecond)

	s.Queue(&State{Volume: 1})
	time.Sleep(60 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Fatalf("saved %d times during failure, want 0", n)
	}

	rec.mu.Lock()
	rec.fail = false
	rec.mu.Unlock()

	// the next trigger carries the newest state, not the failed snapshot
	s.Queue(&State{Volume: 2})
	time.Sleep(60 * time.Millisecond)

	if n := rec.count(); n != 1 {
		t.Fatalf("saved %d times after recovery, want 1", n)
	}
	if got := rec.last().Volume; got != 2 {
		t.Errorf("saved volume = %v, want 2", got)
	}
}

func TestSaverFlushWritesImmediately(t *testing.T) {
	rec := &saveRecorder{}
	s := NewSaver(rec.save, time.Hour)

	s.Queue(&State{Volume: 3})
	s.Flush()

	if n := rec.count(); n != 1 {
		t.Fatalf("saved %d times after Flush, want 1", n)
	}
}
