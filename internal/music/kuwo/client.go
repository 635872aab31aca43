// Package kuwo is a thin client for the kuwo catalog, used as the playable
// URL backend for tracks whose home catalog only serves metadata.
package kuwo

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type Client struct{}

// NewClient 创建一个kuwo客户端
func NewClient() *Client {
	return &Client{}
}

// SearchRid searches the catalog and returns the rid of the best match.
func (c *Client) SearchRid(keyword string) (string, error) {
	api := searchAPI(0, 10, keyword)
	r, err := getJSON(api)
	if err != nil {
		return "", err
	}
	rid := r.Get("abslist.0.MUSICRID").String()
	if rid == "" {
		return "", errors.New("kuwo: no result for " + keyword)
	}
	return strings.TrimPrefix(rid, "MUSIC_"), nil
}

// SongURL converts a rid into a playable URL at the requested bitrate
// (e.g. "2000kflac", "320kmp3", "128kmp3").
func (c *Client) SongURL(rid, br string) (string, int64, error) {
	r, err := getJSON(convertAPI(rid, br))
	if err != nil {
		return "", 0, err
	}
	u := r.Get("data.url").String()
	if u == "" {
		return "", 0, fmt.Errorf("kuwo: no url for rid %s br %s", rid, br)
	}
	return u, r.Get("data.duration").Int(), nil
}

func searchAPI(pageNo, pageSize int, key string) string {
	return fmt.Sprintf(kwSearchAPI, pageNo, pageSize, url.QueryEscape(key))
}

func convertAPI(rid, br string) string {
	v := url.Values{
		"f":      []string{"web"},
		"source": []string{"kwplayer_ar_4.4.2.7_B_nuoweida_vh.apk"},
		"format": []string{"mp3"},
		"br":     []string{br},
		"type":   []string{"convert_url_with_sign"},
		"rid":    []string{rid},
	}
	return "https://mobi.kuwo.cn/mobi.s?" + v.Encode()
}

const kwSearchAPI = "https://search.kuwo.cn/r.s?pn=%d&rn=%d&all=%s&ft=music&newsearch=1&alflac=1&itemset=web_2013&client=kt&cluster=0&vermerge=1&rformat=json&encoding=utf8&show_copyright_off=1&pcmp4=1&ver=mbox&plat=pc&vipver=1&devid=11404450&newver=1&issubtitle=1&pcjson=1"

var searchHeaders = map[string]string{
	"user_agent": `Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36 Edg/110.0.1587.50`,
	"accept":     `text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7`,
	"referer":    `http://kuwo.cn/search/list`,
}
