package music

import (
	"errors"
	"log"
	"strings"
)

// Provider is a single remote catalog backend.
type Provider interface {
	ID() string
	Search(o SearchOption) SearchResult[Song]
	// SongList fetches the tracks of a remote playlist.
	SongList(o SearchOption) SearchResult[Song]
	// SongURL resolves a playable stream URL for the track at the given
	// quality level, falling through to lower levels internally.
	SongURL(mid, quality string) (string, error)
	// Lyric fetches the raw lyric text and, when requested, the
	// translation track.
	Lyric(mid string, translation bool) (lyric, trans string, err error)
}

// URLResult is a resolved playback URL. FallbackProvider is set when the
// active provider failed and a fallback served the request.
type URLResult struct {
	URL              string
	Provider         string
	FallbackProvider string
}

// LyricResult is a resolved lyric text pair.
type LyricResult struct {
	Lyric            string
	Translation      string
	FallbackProvider string
}

// Manager routes catalog requests to the active provider and retries
// failed resolutions against fallback providers by re-matching the song
// there by name and artist.
type Manager struct {
	providers map[string]Provider
	active    string
	fallbacks []string
}

func NewManager(active Provider, fallbacks ...Provider) *Manager {
	m := &Manager{
		providers: map[string]Provider{active.ID(): active},
		active:    active.ID(),
	}
	for _, p := range fallbacks {
		if p.ID() == m.active {
			continue
		}
		m.providers[p.ID()] = p
		m.fallbacks = append(m.fallbacks, p.ID())
	}
	return m
}

// ActiveID returns the id of the active provider.
func (m *Manager) ActiveID() string { return m.active }

// Search searches the active provider.
func (m *Manager) Search(o SearchOption) SearchResult[Song] {
	return m.providers[m.active].Search(o)
}

// SongList fetches a remote playlist from the active provider.
func (m *Manager) SongList(o SearchOption) SearchResult[Song] {
	return m.providers[m.active].SongList(o)
}

// ResolveURL resolves a playable URL for s, trying the active provider
// first and then each fallback provider in order.
func (m *Manager) ResolveURL(s Song, quality string) (URLResult, error) {
	active := m.providers[m.active]
	u, err := active.SongURL(s.ID, quality)
	if err == nil && u != "" {
		return URLResult{URL: u, Provider: m.active}, nil
	}
	origErr := err

	for _, id := range m.fallbacks {
		fb := m.providers[id]
		matched, ok := m.matchSong(fb, s)
		if !ok {
			continue
		}
		u, err := fb.SongURL(matched.ID, quality)
		if err != nil || u == "" {
			continue
		}
		log.Printf("music: url for %s served by fallback %s", s.Name, id)
		return URLResult{URL: u, Provider: m.active, FallbackProvider: id}, nil
	}

	if origErr == nil {
		origErr = errors.New("music: empty url")
	}
	return URLResult{Provider: m.active}, origErr
}

// ResolveLyric resolves the lyric for s with the same fallback policy.
func (m *Manager) ResolveLyric(s Song, translation bool) (LyricResult, error) {
	active := m.providers[m.active]
	ly, trans, err := active.Lyric(s.ID, translation)
	if err == nil && ly != "" {
		return LyricResult{Lyric: ly, Translation: trans}, nil
	}
	origErr := err

	for _, id := range m.fallbacks {
		fb := m.providers[id]
		matched, ok := m.matchSong(fb, s)
		if !ok {
			continue
		}
		ly, trans, err := fb.Lyric(matched.ID, translation)
		if err != nil || ly == "" {
			continue
		}
		return LyricResult{Lyric: ly, Translation: trans, FallbackProvider: id}, nil
	}

	if origErr == nil {
		origErr = errors.New("music: empty lyric")
	}
	return LyricResult{}, origErr
}

// matchSong searches fb for a track equivalent to s: exact name with a
// matching artist wins, a bare exact name is accepted as second choice.
func (m *Manager) matchSong(fb Provider, s Song) (Song, bool) {
	r := fb.Search(SearchOption{Keyword: s.Name + " " + s.Artist, Page: 1, PageSize: 10})
	var loose *Song
	for _, c := range r.Data {
		if c.Name != s.Name {
			continue
		}
		if strings.Contains(c.Artist, s.Artist) || strings.Contains(s.Artist, c.Artist) {
			return *c, true
		}
		if loose == nil {
			loose = c
		}
	}
	if loose != nil {
		return *loose, true
	}
	return Song{}, false
}
