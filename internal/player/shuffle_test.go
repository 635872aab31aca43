package player

import "testing"

func TestShuffleVisitsEachIndexOnce(t *testing.T) {
	s := NewShuffle()
	s.Reset(0, 8)

	seen := map[int]bool{0: true}
	for i := 0; i < 7; i++ {
		idx, ok := s.Next()
		if !ok {
			t.Fatalf("Next %d: exhausted early", i)
		}
		if idx < 0 || idx >= 8 {
			t.Fatalf("Next %d: index %d out of range", i, idx)
		}
		if seen[idx] {
			t.Fatalf("Next %d: index %d repeated within cycle", i, idx)
		}
		seen[idx] = true
	}
	if len(seen) != 8 {
		t.Fatalf("visited %d indices, want 8", len(seen))
	}

	// pool exhausted, the next draw starts a fresh cycle
	idx, ok := s.Next()
	if !ok {
		t.Fatal("new cycle did not start")
	}
	if idx < 0 || idx >= 8 {
		t.Fatalf("new cycle index %d out of range", idx)
	}
}

func TestShuffleRewindReplaysHistory(t *testing.T) {
	s := NewShuffle()
	s.Reset(0, 10)

	var walked []int
	for i := 0; i < 5; i++ {
		idx, ok := s.Next()
		if !ok {
			t.Fatal("Next exhausted early")
		}
		walked = append(walked, idx)
	}

	for i := len(walked) - 2; i >= 0; i-- {
		idx, ok := s.Prev()
		if !ok || idx != walked[i] {
			t.Fatalf("Prev: got %d, want %d", idx, walked[i])
		}
	}

	for i := 1; i < len(walked); i++ {
		idx, ok := s.Next()
		if !ok || idx != walked[i] {
			t.Fatalf("replay Next: got %d, want %d", idx, walked[i])
		}
	}
}

func TestShufflePrevStopsAtStart(t *testing.T) {
	s := NewShuffle()
	s.Reset(3, 5)
	idx, ok := s.Prev()
	if !ok || idx != 3 {
		t.Fatalf("Prev at start: got %d %v, want 3 true", idx, ok)
	}
}

func TestShuffleSingleEntry(t *testing.T) {
	s := NewShuffle()
	s.Reset(0, 1)
	if _, ok := s.Next(); ok {
		t.Error("Next on a single-entry queue should report false")
	}
}

func TestShuffleOnInsert(t *testing.T) {
	s := NewShuffle()
	s.Reset(0, 2)
	if idx, ok := s.Next(); !ok || idx != 1 {
		t.Fatalf("Next: got %d %v, want 1 true", idx, ok)
	}

	s.OnInsert(2, 3)
	seen := make(map[int]bool)
	for i := 0; i < 2; i++ {
		idx, ok := s.Next()
		if !ok {
			t.Fatal("Next exhausted after insert")
		}
		seen[idx] = true
	}
	if !seen[2] || !seen[3] {
		t.Fatalf("inserted indices not drawn, saw %v", seen)
	}
}

func TestShuffleOnRemoveRenumbers(t *testing.T) {
	s := NewShuffle()
	s.history = []int{2, 0, 4}
	s.cursor = 2
	s.size = 5
	s.rebuildPool()

	s.OnRemove(1)

	want := []int{1, 0, 3}
	if len(s.history) != len(want) {
		t.Fatalf("history = %v, want %v", s.history, want)
	}
	for i := range want {
		if s.history[i] != want[i] {
			t.Fatalf("history = %v, want %v", s.history, want)
		}
	}
	if s.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", s.cursor)
	}
	if s.size != 4 {
		t.Fatalf("size = %d, want 4", s.size)
	}
}

func TestShuffleOnRemoveVisitedEntry(t *testing.T) {
	s := NewShuffle()
	s.history = []int{0, 3, 1}
	s.cursor = 2
	s.size = 4
	s.rebuildPool()

	// removing a visited index drops it from the tape and pulls the
	// cursor back so the current entry stays current
	s.OnRemove(3)

	if len(s.history) != 2 || s.history[0] != 0 || s.history[1] != 1 {
		t.Fatalf("history = %v, want [0 1]", s.history)
	}
	if s.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", s.cursor)
	}
}

func TestShuffleSyncRewindsToKnownIndex(t *testing.T) {
	s := NewShuffle()
	s.history = []int{0, 2, 4, 1}
	s.cursor = 3
	s.size = 5
	s.rebuildPool()

	s.Sync(2, 5)

	if s.cursor != 1 || s.history[s.cursor] != 2 {
		t.Fatalf("cursor at %d (index %d), want 1 (index 2)", s.cursor, s.history[s.cursor])
	}
	// pruned-forward indices are drawable again
	drawable := make(map[int]bool)
	for _, i := range s.pool {
		drawable[i] = true
	}
	if !drawable[4] || !drawable[1] {
		t.Fatalf("pruned indices missing from pool %v", s.pool)
	}
}

func TestShuffleSyncUnknownIndexStartsFresh(t *testing.T) {
	s := NewShuffle()
	s.history = []int{0, 2}
	s.cursor = 1
	s.size = 3
	s.rebuildPool()

	s.Sync(1, 4)

	if len(s.history) != 1 || s.history[0] != 1 || s.cursor != 0 {
		t.Fatalf("history = %v cursor = %d, want [1] 0", s.history, s.cursor)
	}
	if len(s.pool) != 3 {
		t.Fatalf("pool = %v, want the 3 other indices", s.pool)
	}
}
