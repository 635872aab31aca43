package store

import (
	"log"
	"sync"
	"time"
)

// SaveDelay is the debounce window for persistence writes; rapid
// successive state changes inside the window coalesce into one write.
const SaveDelay = 300 * time.Millisecond

// Saver debounces settings writes. Queue replaces any pending snapshot,
// so the write that eventually runs always carries the newest state; a
// failed write keeps its snapshot pending and it is retried (or replaced)
// on the next trigger.
type Saver struct {
	save  func(*State) error
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *State
}

func NewSaver(save func(*State) error, delay time.Duration) *Saver {
	return &Saver{save: save, delay: delay}
}

// Queue schedules st to be written after the debounce window.
func (s *Saver) Queue(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = st
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.flush)
	}
}

func (s *Saver) flush() {
	s.mu.Lock()
	st := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()
	if st == nil {
		return
	}

	if err := s.save(st); err != nil {
		log.Printf("store: save failed, will retry: %v", err)
		s.mu.Lock()
		if s.pending == nil {
			s.pending = st
		}
		s.mu.Unlock()
	}
}

// Flush writes any pending snapshot immediately. Used on shutdown.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flush()
}
