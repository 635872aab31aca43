package player

import (
	"sync"

	"github.com/google/uuid"

	"github.com/bihua-university/aplayer/internal/music"
)

type H = music.H

// Event types pushed to subscribers.
const (
	EventState  = "state"  // playback state changed
	EventSong   = "song"   // current song changed
	EventQueue  = "queue"  // queue contents changed
	EventLyric  = "lyric"  // lyric for the current song arrived
	EventMode   = "mode"   // play mode changed
	EventVolume = "volume" // volume changed
	EventError  = "error"  // per-track failure, playback may auto-skip
)

type Event struct {
	Type string `json:"type"`
	Data H      `json:"data"`
}

// Emitter fans player events out to subscribers. Sends never block: a
// subscriber that stops draining loses events, not the player.
type Emitter struct {
	mu   sync.Mutex
	subs map[string]chan Event
}

func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[string]chan Event)}
}

// Subscribe registers a new subscriber and returns its id and channel.
// The channel is closed by Unsubscribe or Close.
func (e *Emitter) Subscribe() (string, <-chan Event) {
	id := uuid.New().String()
	ch := make(chan Event, 16)
	e.mu.Lock()
	e.subs[id] = ch
	e.mu.Unlock()
	return id, ch
}

func (e *Emitter) Unsubscribe(id string) {
	e.mu.Lock()
	if ch, ok := e.subs[id]; ok {
		delete(e.subs, id)
		close(ch)
	}
	e.mu.Unlock()
}

func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	e.mu.Unlock()
}

func (e *Emitter) Close() {
	e.mu.Lock()
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
	e.mu.Unlock()
}
