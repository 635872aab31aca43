package player

import (
	"testing"

	"github.com/bihua-university/aplayer/internal/music"
)

func song(id string) music.Song {
	return music.Song{ID: id, Name: "song-" + id}
}

func ids(songs []music.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.ID
	}
	return out
}

func checkQueue(t *testing.T, q *Queue, want []string, current int) {
	t.Helper()
	got := ids(q.Songs())
	if len(got) != len(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue = %v, want %v", got, want)
		}
	}
	if q.Current() != current {
		t.Fatalf("current = %d, want %d", q.Current(), current)
	}
}

func checkUnique(t *testing.T, q *Queue) {
	t.Helper()
	seen := make(map[string]bool)
	for _, s := range q.Songs() {
		if seen[s.ID] {
			t.Fatalf("duplicate id %q in queue %v", s.ID, ids(q.Songs()))
		}
		seen[s.ID] = true
	}
}

func TestQueuePlaySongIdle(t *testing.T) {
	q := NewQueue()
	q.PlaySong(song("a"))
	checkQueue(t, q, []string{"a"}, 0)
}

func TestQueuePlaySongInsertsAfterCurrent(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a"), song("b"), song("c")}, 1)
	q.PlaySong(song("x"))
	checkQueue(t, q, []string{"a", "b", "x", "c"}, 2)
	checkUnique(t, q)
}

func TestQueuePlaySongMovesExisting(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a"), song("b"), song("c"), song("d")}, 1)

	// "d" already sits in the future, playing it moves it next to "b"
	q.PlaySong(song("d"))
	checkQueue(t, q, []string{"a", "b", "d", "c"}, 2)
	checkUnique(t, q)

	// "a" sits in history, cursor shifts down when it is pulled out
	q.PlaySong(song("a"))
	checkQueue(t, q, []string{"b", "d", "a", "c"}, 2)
	checkUnique(t, q)
}

func TestQueuePlaySongCurrentIsNoop(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a"), song("b")}, 0)
	q.PlaySong(song("a"))
	checkQueue(t, q, []string{"a", "b"}, 0)
}

func TestQueuePlayPlaylistIdle(t *testing.T) {
	q := NewQueue()
	q.PlayPlaylist([]music.Song{song("a"), song("b"), song("c")}, 1)
	checkQueue(t, q, []string{"a", "b", "c"}, 1)
}

func TestQueuePlayPlaylistClampsStartIndex(t *testing.T) {
	q := NewQueue()
	q.PlayPlaylist([]music.Song{song("a"), song("b")}, 99)
	checkQueue(t, q, []string{"a", "b"}, 1)
}

func TestQueuePlayPlaylistSplices(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a"), song("b"), song("c")}, 1)

	// "c" is both in the future and in the incoming list: the queued
	// copy is dropped and the incoming copy lands in the splice
	q.PlayPlaylist([]music.Song{song("x"), song("c"), song("y")}, 0)
	checkQueue(t, q, []string{"a", "b", "x", "c", "y"}, 2)
	checkUnique(t, q)
}

func TestQueuePlayPlaylistAllDuplicates(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a"), song("b"), song("c")}, 0)

	// nothing new to insert, the cursor just jumps to the wanted song
	q.PlayPlaylist([]music.Song{song("b"), song("c")}, 1)
	checkQueue(t, q, []string{"a", "b", "c"}, 2)
}

func TestQueueAddFiltersPresent(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a"), song("b")}, 0)
	added := q.Add([]music.Song{song("b"), song("c"), song("c")})
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	checkQueue(t, q, []string{"a", "b", "c"}, 0)
}

func TestQueueAddOnIdleSetsCursor(t *testing.T) {
	q := NewQueue()
	if added := q.Add([]music.Song{song("a"), song("b")}); added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	checkQueue(t, q, []string{"a", "b"}, 0)
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a"), song("b"), song("c")}, 1)

	if q.Remove(0) {
		t.Error("removed a history entry")
	}
	if q.Remove(1) {
		t.Error("removed the current entry")
	}
	if q.Remove(3) {
		t.Error("removed out of bounds")
	}
	if !q.Remove(2) {
		t.Error("failed to remove a future entry")
	}
	checkQueue(t, q, []string{"a", "b"}, 1)
}

func TestQueueRestoreBounds(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a"), song("b")}, 7)
	checkQueue(t, q, []string{"a", "b"}, 0)

	q.Restore(nil, 0)
	if q.Len() != 0 || q.Current() != -1 {
		t.Fatalf("restore nil: len=%d current=%d", q.Len(), q.Current())
	}
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Restore([]music.Song{song("a")}, 0)
	q.Clear()
	if q.Len() != 0 || q.Current() != -1 {
		t.Fatalf("after clear: len=%d current=%d", q.Len(), q.Current())
	}
}
