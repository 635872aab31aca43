package music

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const neteaseSongType = 1

// Netease is the netease cloud music catalog, talked to through a
// NeteaseCloudMusicApi service instance.
type Netease struct {
	api    string
	cookie string
}

func NewNetease(api, cookie string) *Netease {
	return &Netease{api: api, cookie: cookie}
}

func (n *Netease) ID() string { return "netease" }

func (n *Netease) post(path string, k H, key string) gjson.Result {
	k["cookie"] = n.cookie

	dest := n.api + path
	if key != "" {
		dest += fmt.Sprintf("?%s=%s", key, url.QueryEscape(fmt.Sprint(k[key])))
	} else {
		dest += "?timestamp=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	return httpPostJSON(dest, k)
}

func (n *Netease) Search(o SearchOption) SearchResult[Song] {
	r := n.post("/cloudsearch", H{
		"keywords": o.Keyword,
		"type":     neteaseSongType,
	}, "keywords")
	return neteaseSongs(r.Get("result.songs"), o)
}

// SongList fetches the tracks of a public playlist.
func (n *Netease) SongList(o SearchOption) SearchResult[Song] {
	r := n.post("/playlist/track/all", H{
		"id": o.ID,
	}, "id")
	return neteaseSongs(r.Get("songs"), o)
}

func (n *Netease) SongURL(mid, quality string) (string, error) {
	level := neteaseLevel(quality)

	// 从试听链接中下载
	try := n.post("/song/url/v1", H{
		"level": level,
		"id":    mid,
	}, "id")
	u := try.Get("data.0.url").String()
	if u == "" {
		download := n.post("/song/download/url/v1", H{
			"level": level,
			"id":    mid,
		}, "id")
		u = download.Get("data.url").String()
	}
	if u == "" {
		return "", fmt.Errorf("netease: no url for %s", mid)
	}
	return u, nil
}

func (n *Netease) Lyric(mid string, translation bool) (string, string, error) {
	r := n.post("/lyric", H{
		"id": mid,
	}, "id")
	ly := r.Get("lrc.lyric").String()
	if ly == "" {
		return "", "", fmt.Errorf("netease: no lyric for %s", mid)
	}
	trans := ""
	if translation {
		trans = r.Get("tlyric.lyric").String()
	}
	return ly, trans, nil
}

func neteaseLevel(quality string) string {
	switch quality {
	case QualityFlac:
		return "lossless"
	case Quality320:
		return "exhigh"
	default:
		return "standard"
	}
}

func neteaseSongs(r gjson.Result, o SearchOption) SearchResult[Song] {
	var total int64
	var res []*Song
	r.ForEach(func(_, item gjson.Result) bool {
		total++
		if total < (o.Page-1)*o.PageSize || int64(len(res)) > o.PageSize {
			return true
		}

		m := &Song{
			ID:       item.Get("id").String(),
			Name:     item.Get("name").String(),
			Artist:   joinSingers(item.Get("ar")),
			Album:    Album{Name: item.Get("al.name").String()},
			Duration: item.Get("dt").Int() / 1000,
			Cover:    item.Get("al.picUrl").String(),
			Source:   "netease",
		}
		res = append(res, m)
		return true
	})
	return SearchResult[Song]{Total: total, Data: res}
}
