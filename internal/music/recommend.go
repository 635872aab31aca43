package music

import (
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tidwall/gjson"
)

// Recommender extends a finished queue with tracks similar to what was
// played, via the netease similar-song endpoint. Tracks it already
// served are not recommended again.
type Recommender struct {
	netease *Netease

	mu      sync.Mutex
	history []string // played track ids, oldest first
	served  []string // ids already handed out

	cache *expirable.LRU[string, []Song] // similar tracks per seed id
}

const (
	maxHistory   = 32
	maxServed    = maxHistory * 4
	maxRecommend = 10
)

func NewRecommender(n *Netease) *Recommender {
	return &Recommender{
		netease: n,
		cache:   expirable.NewLRU[string, []Song](128, nil, 30*time.Minute),
	}
}

// AddHistory records a played track id.
func (r *Recommender) AddHistory(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" || slices.Contains(r.history, id) {
		return
	}
	if len(r.history) >= maxHistory {
		r.history = r.history[1:]
	}
	r.history = append(r.history, id)
}

// Ready reports whether enough has been played to seed recommendations.
func (r *Recommender) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history) >= 3
}

// Recommend returns up to maxRecommend tracks similar to the play
// history, excluding everything in playlist and everything served
// before.
func (r *Recommender) Recommend(playlist []Song) []Song {
	r.mu.Lock()
	seeds := slices.Clone(r.history)
	visited := make(map[string]bool, len(r.history)+len(r.served)+len(playlist))
	for _, id := range r.history {
		visited[id] = true
	}
	for _, id := range r.served {
		visited[id] = true
	}
	r.mu.Unlock()

	for _, s := range playlist {
		if !visited[s.ID] {
			seeds = append(seeds, s.ID)
		}
		visited[s.ID] = true
	}

	var picked []Song
	for _, seed := range seeds {
		if len(picked) >= maxRecommend {
			break
		}
		for _, s := range r.similar(seed) {
			if visited[s.ID] {
				continue
			}
			visited[s.ID] = true
			picked = append(picked, s)
		}
	}
	if len(picked) > maxRecommend {
		picked = picked[:maxRecommend]
	}

	r.mu.Lock()
	for _, s := range picked {
		if len(r.served) >= maxServed {
			r.served = r.served[1:]
		}
		r.served = append(r.served, s.ID)
	}
	r.mu.Unlock()
	return picked
}

func (r *Recommender) similar(id string) []Song {
	if cached, ok := r.cache.Get(id); ok {
		return cached
	}

	resp := r.netease.post("/simi/song", H{"id": id}, "id")
	songs := make([]Song, 0, 5)
	resp.Get("songs").ForEach(func(_, v gjson.Result) bool {
		songs = append(songs, Song{
			ID:       v.Get("id").String(),
			Name:     v.Get("name").String(),
			Artist:   joinSingers(v.Get("artists")),
			Album:    Album{Name: v.Get("album.name").String()},
			Duration: v.Get("duration").Int() / 1000,
			Cover:    v.Get("album.picUrl").String(),
			Source:   "netease",
		})
		return true
	})
	r.cache.Add(id, songs)
	return songs
}
