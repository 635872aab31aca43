// Package store persists player settings and the lyric cache in a local
// bbolt database.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/bihua-university/aplayer/internal/music"
)

var (
	bucketSettings = []byte("settings")
	bucketLyrics   = []byte("lyrics")
)

var keyState = []byte("state")

// QueueState is a restorable queue snapshot for one provider.
type QueueState struct {
	Playlist     []music.Song `json:"playlist"`
	CurrentIndex int          `json:"currentIndex"`
	CurrentMid   string       `json:"currentMid"`
}

// State is the persisted settings blob.
type State struct {
	PreferredQuality string                `json:"preferredQuality"`
	PlayMode         string                `json:"playMode"`
	Volume           float64               `json:"volume"`
	ProviderQueues   map[string]QueueState `json:"providerQueues,omitempty"`
}

// DefaultState returns the settings used before anything was saved.
func DefaultState() *State {
	return &State{
		PreferredQuality: music.Quality320,
		PlayMode:         "order",
		Volume:           1,
	}
}

type Store struct {
	db *bolt.DB
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, "aplayer.db"), 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketSettings, bucketLyrics} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadState reads the settings blob, or the defaults when none is saved.
func (s *Store) LoadState() (*State, error) {
	st := DefaultState()
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSettings).Get(keyState)
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, st)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// SaveState writes the settings blob. Provider queues are merged key by
// key so that saving one provider's snapshot keeps the others around.
func (s *Store) SaveState(st *State) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)

		merged := *st
		if raw := b.Get(keyState); raw != nil {
			var old State
			if err := json.Unmarshal(raw, &old); err == nil && len(old.ProviderQueues) > 0 {
				queues := make(map[string]QueueState, len(old.ProviderQueues))
				for k, v := range old.ProviderQueues {
					queues[k] = v
				}
				for k, v := range st.ProviderQueues {
					queues[k] = v
				}
				merged.ProviderQueues = queues
			}
		}

		raw, err := json.Marshal(&merged)
		if err != nil {
			return err
		}
		return b.Put(keyState, raw)
	})
}

type lyricEntry struct {
	Lyric       string `json:"lyric"`
	Translation string `json:"translation,omitempty"`
}

// Lyric returns the cached raw lyric text for a track, if present.
func (s *Store) Lyric(id string) (text, trans string, ok bool) {
	_ = s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketLyrics).Get([]byte(id))
		if raw == nil {
			return nil
		}
		var e lyricEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil
		}
		text, trans, ok = e.Lyric, e.Translation, true
		return nil
	})
	return text, trans, ok
}

// PutLyric stores the raw lyric text for a track. Lyrics are immutable
// per track so entries are only ever written once.
func (s *Store) PutLyric(id, text, trans string) error {
	raw, err := json.Marshal(&lyricEntry{Lyric: text, Translation: trans})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLyrics).Put([]byte(id), raw)
	})
}
