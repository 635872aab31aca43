// Package player is the playback core: an ordered play queue, a shuffled
// traversal over it, and the controller that drives the single audio
// session through loading, retry and auto-skip.
package player

import (
	"log"
	"sync"
	"time"

	"github.com/bihua-university/aplayer/internal/audio"
	"github.com/bihua-university/aplayer/internal/lyric"
	"github.com/bihua-university/aplayer/internal/music"
	"github.com/bihua-university/aplayer/internal/store"
)

type PlayMode int

const (
	ModeOrder PlayMode = iota
	ModeSingle
	ModeShuffle
)

func (m PlayMode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeShuffle:
		return "shuffle"
	default:
		return "order"
	}
}

func ParseMode(s string) PlayMode {
	switch s {
	case "single":
		return ModeSingle
	case "shuffle":
		return ModeShuffle
	default:
		return ModeOrder
	}
}

type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Assets resolves and caches stream URLs and lyrics. *music.Cache
// implements it.
type Assets interface {
	URL(s music.Song, quality string) (string, error)
	Lyric(s music.Song) (*lyric.Lyric, error)
	Invalidate(id string)
	Prefetch(s music.Song, quality string)
	Reset()
}

// Persister receives debounced settings snapshots. *store.Saver
// implements it.
type Persister interface {
	Queue(st *store.State)
}

// DefaultSkipDelay is how long a failed track is displayed before the
// queue auto-advances past it.
const DefaultSkipDelay = 2 * time.Second

type Options struct {
	Engine   audio.Engine
	Assets   Assets
	Persist  Persister // optional
	Provider string    // active provider id, keys the persisted queue

	// SkipDelay overrides DefaultSkipDelay, mainly for tests.
	SkipDelay time.Duration
}

// Player owns the queue, the shuffle state and the audio session. All
// fields are guarded by mu; slow work (resolution, loading) runs on
// goroutines and re-enters under mu, carrying a generation number so a
// newer request always wins over a stale completion.
type Player struct {
	mu     sync.Mutex
	loadMu sync.Mutex // serializes engine load/start sequences

	queue   *Queue
	shuffle *Shuffle
	mode    PlayMode
	quality string
	volume  float64

	state  State
	loaded bool // engine has a source
	lyric  *lyric.Lyric

	engine   audio.Engine
	assets   Assets
	persist  Persister
	provider string
	events   *Emitter

	gen       uint64
	skipTimer *time.Timer
	skipDelay time.Duration
	needMore  func() []music.Song
}

func New(o Options) *Player {
	p := &Player{
		queue:     NewQueue(),
		shuffle:   NewShuffle(),
		quality:   music.Quality320,
		volume:    1,
		engine:    o.Engine,
		assets:    o.Assets,
		persist:   o.Persist,
		provider:  o.Provider,
		events:    NewEmitter(),
		skipDelay: o.SkipDelay,
	}
	if p.engine == nil {
		p.engine = audio.Noop{}
	}
	if p.skipDelay <= 0 {
		p.skipDelay = DefaultSkipDelay
	}
	p.engine.SetOnFinish(p.onFinish)
	return p
}

// Restore loads a persisted settings snapshot. The queue comes back in
// idle state; TogglePlay re-resolves the current song on demand.
func (p *Player) Restore(st *store.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st.PreferredQuality != "" {
		p.quality = st.PreferredQuality
	}
	p.mode = ParseMode(st.PlayMode)
	if st.Volume > 0 {
		p.volume = st.Volume
	}
	p.engine.SetVolume(p.volume)

	q, ok := st.ProviderQueues[p.provider]
	if !ok || len(q.Playlist) == 0 {
		return
	}
	p.queue.Restore(q.Playlist, q.CurrentIndex)
	if q.CurrentMid != "" {
		if cur, ok := p.queue.CurrentSong(); !ok || cur.ID != q.CurrentMid {
			for i, s := range q.Playlist {
				if s.ID == q.CurrentMid {
					p.queue.JumpTo(i)
					break
				}
			}
		}
	}
	if p.mode == ModeShuffle {
		p.shuffle.Reset(p.queue.Current(), p.queue.Len())
	}
}

// PlaySong queues s right after the current song and plays it.
func (p *Player) PlaySong(s music.Song) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.PlaySong(s)
	p.afterQueueChangeLocked()
	p.playIndexLocked(p.queue.Current(), true)
}

// PlayPlaylist queues songs and starts from songs[startIndex].
func (p *Player) PlayPlaylist(songs []music.Song, startIndex int) {
	if len(songs) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.PlayPlaylist(songs, startIndex)
	p.afterQueueChangeLocked()
	p.playIndexLocked(p.queue.Current(), true)
}

// AddToQueue appends songs not yet queued. On an idle player the first
// appended song starts playing.
func (p *Player) AddToQueue(songs []music.Song) {
	p.mu.Lock()
	defer p.mu.Unlock()

	wasIdle := p.queue.Current() < 0
	before := p.queue.Len()
	added := p.queue.Add(songs)
	if added == 0 {
		return
	}

	if p.mode == ModeShuffle && !wasIdle {
		indices := make([]int, 0, added)
		for i := before; i < before+added; i++ {
			indices = append(indices, i)
		}
		p.shuffle.OnInsert(indices...)
	}
	p.emitQueueLocked()
	p.persistLocked()

	if wasIdle {
		if p.mode == ModeShuffle {
			p.shuffle.Reset(0, p.queue.Len())
		}
		p.playIndexLocked(0, true)
	}
}

// RemoveFromQueue removes the future entry at index. History and the
// current song stay.
func (p *Player) RemoveFromQueue(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.queue.Remove(index) {
		return
	}
	if p.mode == ModeShuffle {
		p.shuffle.OnRemove(index)
	}
	p.emitQueueLocked()
	p.persistLocked()
}

// PlayAtIndex jumps to an arbitrary queue position.
func (p *Player) PlayAtIndex(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.queue.At(index); !ok {
		return
	}
	if p.mode == ModeShuffle {
		p.shuffle.JumpTo(index)
	}
	p.playIndexLocked(index, true)
}

func (p *Player) PlayNext() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceLocked(1, true)
}

func (p *Player) PlayPrev() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceLocked(-1, true)
}

// TogglePlay pauses or resumes in place. When no source is loaded but a
// current song is known (restored state), it re-resolves and loads it
// without auto-skip: an explicit user action must not silently skip.
func (p *Player) TogglePlay() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StatePlaying:
		p.engine.Pause()
		p.setStateLocked(StatePaused)
	case StatePaused:
		if p.loaded {
			p.engine.Resume()
			p.setStateLocked(StatePlaying)
			return
		}
		fallthrough
	case StateIdle:
		if cur := p.queue.Current(); cur >= 0 {
			p.playIndexLocked(cur, false)
		}
	case StateLoading:
		// a load is in flight, let it settle
	}
}

// Seek clamps to the known duration; with no duration it is a no-op.
func (p *Player) Seek(d time.Duration) {
	dur := p.engine.Duration()
	if dur <= 0 {
		return
	}
	if d < 0 {
		d = 0
	}
	if d > dur {
		d = dur
	}
	if err := p.engine.Seek(d); err != nil {
		log.Printf("player: seek: %v", err)
	}
}

// Stop halts playback and clears the queue, the shuffle state, the
// current lyric and all cached assets.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.cancelSkipLocked()
	p.engine.Stop()
	p.loaded = false
	p.queue.Clear()
	p.shuffle = NewShuffle()
	p.lyric = nil
	p.assets.Reset()
	p.setStateLocked(StateIdle)
	p.emitQueueLocked()
	p.persistLocked()
}

func (p *Player) SetPlayMode(m PlayMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m == p.mode {
		return
	}
	p.mode = m
	if m == ModeShuffle && p.queue.Current() >= 0 {
		p.shuffle.Reset(p.queue.Current(), p.queue.Len())
	}
	p.events.Emit(Event{Type: EventMode, Data: H{"mode": m.String()}})
	p.persistLocked()
}

func (p *Player) CyclePlayMode() {
	p.mu.Lock()
	m := (p.mode + 1) % 3
	p.mu.Unlock()
	p.SetPlayMode(m)
}

func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	p.engine.SetVolume(v)
	p.events.Emit(Event{Type: EventVolume, Data: H{"volume": v}})
	p.persistLocked()
}

func (p *Player) SetQuality(q string) {
	switch q {
	case music.QualityFlac, music.Quality320, music.Quality128:
	default:
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quality = q
	p.persistLocked()
}

// SetOnNeedMoreSongs registers the callback used to extend the queue
// when order mode runs off the end.
func (p *Player) SetOnNeedMoreSongs(fn func() []music.Song) {
	p.mu.Lock()
	p.needMore = fn
	p.mu.Unlock()
}

func (p *Player) Subscribe() (string, <-chan Event) { return p.events.Subscribe() }
func (p *Player) Unsubscribe(id string)             { p.events.Unsubscribe(id) }

func (p *Player) Mode() PlayMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) Quality() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quality
}

func (p *Player) CurrentSong() (music.Song, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.CurrentSong()
}

// Lyric returns the parsed lyric of the current song, or nil while it is
// still being fetched.
func (p *Player) Lyric() *lyric.Lyric {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lyric
}

func (p *Player) Position() time.Duration { return p.engine.Position() }
func (p *Player) Duration() time.Duration { return p.engine.Duration() }

// Snapshot returns a copy of the observable player state for display.
func (p *Player) Snapshot() H {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := H{
		"state":    p.state.String(),
		"mode":     p.mode.String(),
		"volume":   p.volume,
		"quality":  p.quality,
		"index":    p.queue.Current(),
		"playlist": p.queue.Songs(),
	}
	if cur, ok := p.queue.CurrentSong(); ok {
		h["song"] = cur
	}
	return h
}

func (p *Player) Close() {
	p.mu.Lock()
	p.gen++
	p.cancelSkipLocked()
	p.mu.Unlock()
	p.engine.Close()
	p.events.Close()
}

// playIndexLocked starts playback of the song at index. The current
// output is paused right away so a skip feels instant, then URL
// resolution and loading continue off the lock.
func (p *Player) playIndexLocked(index int, autoSkip bool) {
	song, ok := p.queue.At(index)
	if !ok {
		return
	}
	p.queue.JumpTo(index)

	p.gen++
	gen := p.gen
	p.cancelSkipLocked()
	p.engine.Pause()
	p.loaded = false
	p.lyric = nil
	p.setStateLocked(StateLoading)
	p.events.Emit(Event{Type: EventSong, Data: H{"song": song}})
	p.persistLocked()

	go p.start(gen, song, autoSkip)
}

func (p *Player) start(gen uint64, song music.Song, autoSkip bool) {
	url, err := p.assets.URL(song, p.Quality())

	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	if !p.alive(gen) {
		return
	}
	if err != nil {
		p.fail(gen, song, autoSkip, err)
		return
	}

	if err := p.engine.Load(url); err != nil {
		// the cached URL may have expired server-side within its TTL
		p.assets.Invalidate(song.ID)
		p.fail(gen, song, autoSkip, err)
		return
	}
	if !p.alive(gen) {
		return
	}
	if err := p.engine.Play(); err != nil {
		p.assets.Invalidate(song.ID)
		p.fail(gen, song, autoSkip, err)
		return
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		// superseded between Play and here: a newer request already
		// paused the engine, do not leave this track audible
		p.engine.Pause()
		return
	}
	p.loaded = true
	p.setStateLocked(StatePlaying)
	next, warm := p.prefetchTargetLocked()
	p.mu.Unlock()

	go p.fetchLyric(gen, song)
	if warm {
		go p.assets.Prefetch(next, p.Quality())
	}
}

func (p *Player) alive(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.gen
}

// fail reports a per-track error and, when allowed, schedules a single
// delayed auto-advance. Any new playback request cancels it.
func (p *Player) fail(gen uint64, song music.Song, autoSkip bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return
	}

	log.Printf("player: %s: %v", song.Name, err)
	p.setStateLocked(StateIdle)
	p.events.Emit(Event{Type: EventError, Data: H{"song": song, "error": err.Error()}})

	if !autoSkip || p.queue.Len() <= 1 {
		return
	}
	p.skipTimer = time.AfterFunc(p.skipDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.gen {
			return
		}
		p.skipTimer = nil
		p.advanceLocked(1, true)
	})
}

func (p *Player) onFinish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	gen := p.gen
	p.advanceLocked(1, true)
	if gen == p.gen && p.state == StatePlaying {
		// nothing more to play
		p.setStateLocked(StatePaused)
	}
}

// advanceLocked picks the next index for the active play mode and plays
// it. In order mode at the end of the queue it falls back to the
// queue-extension callback before giving up.
func (p *Player) advanceLocked(direction int, autoSkip bool) {
	if target, ok := p.nextIndexLocked(direction); ok {
		p.playIndexLocked(target, autoSkip)
		return
	}
	if direction > 0 && p.mode == ModeOrder && p.needMore != nil && p.queue.Len() > 0 {
		go p.extendAndPlay(p.gen, p.needMore)
	}
}

func (p *Player) nextIndexLocked(direction int) (int, bool) {
	cur := p.queue.Current()
	if cur < 0 {
		return 0, false
	}
	switch p.mode {
	case ModeSingle:
		return cur, true
	case ModeShuffle:
		if direction > 0 {
			return p.shuffle.Next()
		}
		return p.shuffle.Prev()
	default:
		t := cur + direction
		if t < 0 {
			t = 0
		}
		if t >= p.queue.Len() {
			return 0, false
		}
		return t, true
	}
}

// extendAndPlay asks the queue-extension callback for more songs and, if
// any arrive before playback moved on, appends them and plays the first.
func (p *Player) extendAndPlay(gen uint64, fn func() []music.Song) {
	more := fn()

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || len(more) == 0 {
		return
	}
	before := p.queue.Len()
	if p.queue.Add(more) == 0 {
		return
	}
	p.emitQueueLocked()
	p.playIndexLocked(before, true)
}

func (p *Player) fetchLyric(gen uint64, song music.Song) {
	l, err := p.assets.Lyric(song)
	if err != nil {
		// lyrics never block or fail the playback path
		log.Printf("player: lyric %s: %v", song.Name, err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return
	}
	p.lyric = l
	p.events.Emit(Event{Type: EventLyric, Data: H{"lyric": l}})
}

// prefetchTargetLocked picks the track to warm after a successful start.
// Only the sequential next is warmed: a shuffle draw is not determined
// until it happens, and single mode repeats the already-cached track.
func (p *Player) prefetchTargetLocked() (music.Song, bool) {
	if p.mode == ModeSingle {
		return music.Song{}, false
	}
	return p.queue.At(p.queue.Current() + 1)
}

func (p *Player) afterQueueChangeLocked() {
	if p.mode == ModeShuffle {
		p.shuffle.Sync(p.queue.Current(), p.queue.Len())
	}
	p.emitQueueLocked()
}

func (p *Player) setStateLocked(s State) {
	if p.state == s {
		return
	}
	p.state = s
	p.events.Emit(Event{Type: EventState, Data: H{"state": s.String()}})
}

func (p *Player) emitQueueLocked() {
	p.events.Emit(Event{Type: EventQueue, Data: H{
		"playlist": p.queue.Songs(),
		"index":    p.queue.Current(),
	}})
}

func (p *Player) cancelSkipLocked() {
	if p.skipTimer != nil {
		p.skipTimer.Stop()
		p.skipTimer = nil
	}
}

func (p *Player) persistLocked() {
	if p.persist == nil {
		return
	}
	cur, _ := p.queue.CurrentSong()
	p.persist.Queue(&store.State{
		PreferredQuality: p.quality,
		PlayMode:         p.mode.String(),
		Volume:           p.volume,
		ProviderQueues: map[string]store.QueueState{
			p.provider: {
				Playlist:     p.queue.Songs(),
				CurrentIndex: p.queue.Current(),
				CurrentMid:   cur.ID,
			},
		},
	})
}
