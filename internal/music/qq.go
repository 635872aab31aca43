package music

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bihua-university/aplayer/internal/music/kuwo"
)

// QQ is the QQ music catalog. Its own API serves metadata, search and
// lyrics; playable URLs are converted through the kuwo mirror because the
// stream endpoint requires a paid session.
type QQ struct {
	api  string // qqmusic api service base url
	kuwo *kuwo.Client
}

func NewQQ(api string) *QQ {
	return &QQ{api: api, kuwo: kuwo.NewClient()}
}

func (q *QQ) ID() string { return "qq" }

func (q *QQ) get(path string, k url.Values) gjson.Result {
	return httpGet(q.api+path, k)
}

func (q *QQ) Search(o SearchOption) SearchResult[Song] {
	r := q.get("/search", url.Values{
		"key": []string{o.Keyword},
	})
	return qqSongs(r.Get("data.list"), o)
}

// SongList fetches the tracks of a public playlist.
func (q *QQ) SongList(o SearchOption) SearchResult[Song] {
	r := q.get("/songlist", url.Values{
		"id": []string{o.ID},
	})
	return qqSongs(r.Get("data.songlist"), o)
}

func (q *QQ) SongURL(mid, quality string) (string, error) {
	detail := q.get("/song", url.Values{
		"songmid": []string{mid},
	}).Get("data.track_info")

	name := detail.Get("name").String()
	artist := joinSingers(detail.Get("singer"))
	if name == "" {
		return "", fmt.Errorf("qq: no detail for %s", mid)
	}

	rid, err := q.kuwo.SearchRid(strings.TrimSpace(name + " " + artist))
	if err != nil {
		return "", err
	}

	var lastErr error
	for _, lv := range qualityChain(quality) {
		u, _, err := q.kuwo.SongURL(rid, kuwoBitrate(lv))
		if err == nil {
			return u, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (q *QQ) Lyric(mid string, translation bool) (string, string, error) {
	r := q.get("/lyric", url.Values{
		"songmid": []string{mid},
	})
	ly := r.Get("data.lyric").String()
	if ly == "" {
		return "", "", fmt.Errorf("qq: no lyric for %s", mid)
	}
	trans := ""
	if translation {
		trans = r.Get("data.trans").String()
	}
	return ly, trans, nil
}

func kuwoBitrate(quality string) string {
	switch quality {
	case QualityFlac:
		return "2000kflac"
	case Quality320:
		return "320kmp3"
	default:
		return "128kmp3"
	}
}

func qqSongs(r gjson.Result, o SearchOption) SearchResult[Song] {
	var total int64
	var res []*Song
	r.ForEach(func(_, item gjson.Result) bool {
		total++
		if total < (o.Page-1)*o.PageSize || int64(len(res)) > o.PageSize {
			return true
		}

		mid := item.Get("songmid").String()
		m := &Song{
			ID:       mid,
			Name:     item.Get("songname").String(),
			Artist:   joinSingers(item.Get("singer")),
			Album:    Album{Name: item.Get("albumname").String()},
			Duration: item.Get("interval").Int(),
			Cover:    qqCover(item.Get("albummid").String()),
			Source:   "qq",
		}
		res = append(res, m)
		return true
	})
	return SearchResult[Song]{Total: total, Data: res}
}

func qqCover(albumMid string) string {
	if albumMid == "" {
		return ""
	}
	return fmt.Sprintf("https://y.gtimg.cn/music/photo_new/T002R300x300M000%s.jpg", albumMid)
}

func joinSingers(r gjson.Result) string {
	artist := ""
	r.ForEach(func(_, value gjson.Result) bool {
		if artist != "" {
			artist += ", "
		}
		artist += value.Get("name").String()
		return true
	})
	return artist
}
