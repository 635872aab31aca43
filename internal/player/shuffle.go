package player

import (
	"math/rand/v2"
	"slices"
)

// Shuffle walks the queue in random order without repeating an index
// until every other index has been visited once. Visited indices form a
// rewindable history tape: going back and forward again replays the same
// indices instead of rolling new ones.
type Shuffle struct {
	history []int // visited queue indices, oldest first, no duplicates
	cursor  int   // position in history of the index now playing
	pool    []int // indices not yet visited this cycle
	size    int   // queue length the indices refer to
}

func NewShuffle() *Shuffle {
	return &Shuffle{}
}

// Reset starts a fresh walk from current over a queue of size entries.
func (s *Shuffle) Reset(current, size int) {
	s.size = size
	s.history = []int{current}
	s.cursor = 0
	s.rebuildPool()
}

// Sync reconciles the walk with a reshaped queue. A current index that is
// already in the history rewinds (and prunes) the tape to that point;
// anything else starts a fresh history.
func (s *Shuffle) Sync(current, size int) {
	s.size = size

	seen := make(map[int]bool, len(s.history))
	kept := s.history[:0]
	for _, i := range s.history {
		if i >= size || seen[i] {
			continue
		}
		seen[i] = true
		kept = append(kept, i)
	}
	s.history = kept

	if pos := slices.Index(s.history, current); pos >= 0 {
		s.history = s.history[:pos+1]
		s.cursor = pos
	} else {
		s.history = []int{current}
		s.cursor = 0
	}
	s.rebuildPool()
}

// Next returns the next index of the walk. Replays pruned-forward
// history first; otherwise draws uniformly from the unvisited pool,
// starting a new cycle when the pool is exhausted. Returns false when
// the queue has at most one playable index.
func (s *Shuffle) Next() (int, bool) {
	if len(s.history) == 0 {
		return 0, false
	}
	if s.cursor < len(s.history)-1 {
		s.cursor++
		return s.history[s.cursor], true
	}
	if s.size <= 1 {
		return 0, false
	}
	if len(s.pool) == 0 {
		// every index visited: start a new cycle from the current one
		s.history = []int{s.history[s.cursor]}
		s.cursor = 0
		s.rebuildPool()
		if len(s.pool) == 0 {
			return 0, false
		}
	}

	k := rand.IntN(len(s.pool))
	idx := s.pool[k]
	s.pool = slices.Delete(s.pool, k, k+1)
	s.history = append(s.history, idx)
	s.cursor++
	return idx, true
}

// Prev steps back through the history tape, staying on the first entry
// when there is nothing further back.
func (s *Shuffle) Prev() (int, bool) {
	if len(s.history) == 0 {
		return 0, false
	}
	if s.cursor > 0 {
		s.cursor--
	}
	return s.history[s.cursor], true
}

// OnInsert adds freshly appended queue indices to the unvisited pool.
func (s *Shuffle) OnInsert(indices ...int) {
	for _, idx := range indices {
		if idx >= s.size {
			s.size = idx + 1
		}
		if slices.Contains(s.history, idx) || slices.Contains(s.pool, idx) {
			continue
		}
		s.pool = append(s.pool, idx)
	}
}

// OnRemove drops idx and renumbers everything above it to stay
// consistent with the shrunk queue.
func (s *Shuffle) OnRemove(idx int) {
	kept := s.history[:0]
	for pos, i := range s.history {
		if i == idx {
			if pos <= s.cursor && s.cursor > 0 {
				s.cursor--
			}
			continue
		}
		if i > idx {
			i--
		}
		kept = append(kept, i)
	}
	s.history = kept

	pool := s.pool[:0]
	for _, i := range s.pool {
		if i == idx {
			continue
		}
		if i > idx {
			i--
		}
		pool = append(pool, i)
	}
	s.pool = pool

	if s.size > 0 {
		s.size--
	}
	if s.cursor >= len(s.history) {
		s.cursor = len(s.history) - 1
		if s.cursor < 0 {
			s.cursor = 0
		}
	}
}

// JumpTo records a manual jump: rewinding into the history prunes the
// forward tape, anything else derails the walk into a fresh history.
func (s *Shuffle) JumpTo(idx int) {
	s.Sync(idx, s.size)
}

func (s *Shuffle) rebuildPool() {
	visited := make(map[int]bool, len(s.history))
	for _, i := range s.history {
		visited[i] = true
	}
	s.pool = s.pool[:0]
	for i := 0; i < s.size; i++ {
		if !visited[i] {
			s.pool = append(s.pool, i)
		}
	}
}
