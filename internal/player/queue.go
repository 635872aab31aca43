package player

import (
	"slices"

	"github.com/bihua-university/aplayer/internal/music"
)

// Queue is the single source of truth for the play timeline and the
// current-position cursor. Indices < current are history, indices >
// current are future; current == -1 means idle. No track id appears
// twice, except that the playing song is always retained even when a
// later insertion would collide with it.
//
// Queue is not safe for concurrent use; the Player serializes access.
type Queue struct {
	songs   []music.Song
	current int
}

func NewQueue() *Queue {
	return &Queue{current: -1}
}

func (q *Queue) Len() int     { return len(q.songs) }
func (q *Queue) Current() int { return q.current }

// Songs returns a snapshot copy of the timeline.
func (q *Queue) Songs() []music.Song {
	return slices.Clone(q.songs)
}

func (q *Queue) At(i int) (music.Song, bool) {
	if i < 0 || i >= len(q.songs) {
		return music.Song{}, false
	}
	return q.songs[i], true
}

func (q *Queue) CurrentSong() (music.Song, bool) {
	return q.At(q.current)
}

// PlaySong makes s the current song, splicing it immediately after the
// old position and dropping any other occurrence of the same id so the
// song is never duplicated ahead of or behind itself.
func (q *Queue) PlaySong(s music.Song) {
	if q.current < 0 {
		q.songs = []music.Song{s}
		q.current = 0
		return
	}
	if q.songs[q.current].ID == s.ID {
		// already current, nothing to move
		return
	}

	cur := q.current
	kept := make([]music.Song, 0, len(q.songs)+1)
	for i, t := range q.songs {
		if t.ID == s.ID && i != q.current {
			if i < q.current {
				cur--
			}
			continue
		}
		kept = append(kept, t)
	}

	pos := cur + 1
	kept = slices.Insert(kept, pos, s)
	q.songs = kept
	q.current = pos
}

// PlayPlaylist replaces or extends the timeline with songs and jumps to
// startIndex. When a queue is already playing, the incoming list is
// spliced after the current song with everything already present
// filtered out; if that filters the whole list, the cursor is retargeted
// to the existing occurrence of songs[startIndex].
func (q *Queue) PlayPlaylist(songs []music.Song, startIndex int) {
	if len(songs) == 0 {
		return
	}
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= len(songs) {
		startIndex = len(songs) - 1
	}

	if q.current < 0 {
		q.songs = slices.Clone(songs)
		q.current = startIndex
		return
	}

	incoming := make(map[string]bool, len(songs))
	for _, s := range songs {
		incoming[s.ID] = true
	}

	// keep history and current untouched; drop future entries that the
	// incoming list or an earlier entry already covers
	seen := make(map[string]bool, len(q.songs))
	cleaned := make([]music.Song, 0, len(q.songs))
	for i, t := range q.songs {
		if i <= q.current {
			seen[t.ID] = true
			cleaned = append(cleaned, t)
			continue
		}
		if seen[t.ID] || incoming[t.ID] {
			continue
		}
		seen[t.ID] = true
		cleaned = append(cleaned, t)
	}

	var filtered []music.Song
	for _, s := range songs {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		filtered = append(filtered, s)
	}

	if len(filtered) == 0 {
		// everything is already queued, jump to the requested song
		want := songs[startIndex].ID
		for i, t := range cleaned {
			if t.ID == want {
				q.current = i
				break
			}
		}
		q.songs = cleaned
		return
	}

	q.songs = slices.Insert(cleaned, q.current+1, filtered...)
	idx := startIndex
	if idx >= len(filtered) {
		idx = len(filtered) - 1
	}
	q.current = q.current + 1 + idx
}

// Add appends songs whose ids are not queued yet and reports how many
// survived the filter. On an idle queue the cursor moves to the first
// appended song.
func (q *Queue) Add(songs []music.Song) int {
	present := make(map[string]bool, len(q.songs))
	for _, t := range q.songs {
		present[t.ID] = true
	}

	added := 0
	for _, s := range songs {
		if present[s.ID] {
			continue
		}
		present[s.ID] = true
		q.songs = append(q.songs, s)
		added++
	}
	if q.current < 0 && len(q.songs) > 0 {
		q.current = 0
	}
	return added
}

// Remove drops the future entry at i. History and the current song are
// never removable.
func (q *Queue) Remove(i int) bool {
	if i <= q.current || i >= len(q.songs) {
		return false
	}
	q.songs = slices.Delete(q.songs, i, i+1)
	return true
}

// JumpTo moves the cursor to i if it is in bounds.
func (q *Queue) JumpTo(i int) bool {
	if i < 0 || i >= len(q.songs) {
		return false
	}
	q.current = i
	return true
}

// Restore replaces the timeline with a persisted snapshot.
func (q *Queue) Restore(songs []music.Song, current int) {
	q.songs = slices.Clone(songs)
	if current < 0 || current >= len(q.songs) {
		current = -1
		if len(q.songs) > 0 {
			current = 0
		}
	}
	q.current = current
}

func (q *Queue) Clear() {
	q.songs = nil
	q.current = -1
}
