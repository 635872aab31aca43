package store

import (
	"testing"

	"github.com/bihua-university/aplayer/internal/music"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadStateDefaults(t *testing.T) {
	s := openTestStore(t)
	st, err := s.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	if st.PlayMode != "order" || st.Volume != 1 || st.PreferredQuality != music.Quality320 {
		t.Errorf("defaults = %+v", st)
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := openTestStore(t)

	in := &State{
		PreferredQuality: music.QualityFlac,
		PlayMode:         "shuffle",
		Volume:           0.5,
		ProviderQueues: map[string]QueueState{
			"qq": {
				Playlist:     []music.Song{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
				CurrentIndex: 1,
				CurrentMid:   "b",
			},
		},
	}
	if err := s.SaveState(in); err != nil {
		t.Fatal(err)
	}

	out, err := s.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	if out.PlayMode != "shuffle" || out.Volume != 0.5 {
		t.Errorf("state = %+v", out)
	}
	q := out.ProviderQueues["qq"]
	if len(q.Playlist) != 2 || q.CurrentIndex != 1 || q.CurrentMid != "b" {
		t.Errorf("queue = %+v", q)
	}
}

func TestSaveStateMergesProviderQueues(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveState(&State{
		PlayMode:       "order",
		ProviderQueues: map[string]QueueState{"qq": {CurrentMid: "x"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveState(&State{
		PlayMode:       "order",
		ProviderQueues: map[string]QueueState{"netease": {CurrentMid: "y"}},
	}); err != nil {
		t.Fatal(err)
	}

	out, err := s.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	if out.ProviderQueues["qq"].CurrentMid != "x" {
		t.Error("qq queue lost by a later save")
	}
	if out.ProviderQueues["netease"].CurrentMid != "y" {
		t.Error("netease queue missing")
	}
}

func TestLyricRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, _, ok := s.Lyric("m1"); ok {
		t.Fatal("unexpected lyric before put")
	}
	if err := s.PutLyric("m1", "[00:01.00]hi", "[00:01.00]你好"); err != nil {
		t.Fatal(err)
	}
	text, trans, ok := s.Lyric("m1")
	if !ok || text != "[00:01.00]hi" || trans != "[00:01.00]你好" {
		t.Errorf("lyric = %q, %q, %v", text, trans, ok)
	}
}
