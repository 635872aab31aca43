package music

import "fmt"

type H = map[string]any

// Song is an immutable track descriptor from a remote catalog.
// Identity is the catalog key ID; two songs are the same iff their IDs match.
type Song struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Album    Album  `json:"album"`
	Duration int64  `json:"duration"` // seconds
	Cover    string `json:"pictureUrl"`
	Source   string `json:"source"` // qq/netease
}

type Album struct {
	Name string `json:"name"`
}

// GenerateWebURL generates the web URL for a track based on source and ID
func GenerateWebURL(source, id string) string {
	switch source {
	case "wy", "netease":
		return fmt.Sprintf("https://music.163.com/#/song?id=%s", id)
	case "qq":
		return fmt.Sprintf("https://y.qq.com/n/ryqq/songDetail/%s", id)
	default:
		return ""
	}
}

type SearchOption struct {
	ID       string
	Source   string
	Keyword  string
	Page     int64
	PageSize int64
}

type SearchResult[T any] struct {
	Total int64
	Data  []*T
}

type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PictureURL string `json:"pictureUrl"`
	Desc       string `json:"desc"`
	Creator    string `json:"creator"`
	CreatorUid string `json:"creatorUid"`
	PlayCount  int64  `json:"playCount"`
	SongCount  int64  `json:"songCount"`
}

// Quality levels accepted by SongURL. Providers map these onto their own
// bitrate names and fall through to the next lower level on failure.
const (
	QualityFlac = "flac"
	Quality320  = "320"
	Quality128  = "128"
)

// qualityChain returns the fallback order starting at q.
func qualityChain(q string) []string {
	switch q {
	case QualityFlac:
		return []string{QualityFlac, Quality320, Quality128}
	case Quality320:
		return []string{Quality320, Quality128}
	default:
		return []string{Quality128}
	}
}
