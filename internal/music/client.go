package music

import (
	"net/url"
	"time"

	"github.com/imroc/req/v3"
	"github.com/tidwall/gjson"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36 Edg/135.0.0.0"

var httpClient = req.C().
	SetUserAgent(userAgent).
	SetTimeout(20 * time.Second)

// httpGet performs a GET request and parses the body as JSON. Transport
// failures yield a zero gjson.Result, which reads as empty values.
func httpGet(dest string, k url.Values) gjson.Result {
	r := httpClient.R()
	if k != nil {
		r.SetQueryString(k.Encode())
	}
	resp, err := r.Get(dest)
	if err != nil {
		return gjson.Result{}
	}
	return gjson.ParseBytes(resp.Bytes())
}

// httpPostJSON posts a JSON body and parses the response body as JSON.
func httpPostJSON(dest string, body H) gjson.Result {
	resp, err := httpClient.R().
		SetHeader("content-type", "application/json;charset=UTF-8").
		SetBodyJsonMarshal(body).
		Post(dest)
	if err != nil {
		return gjson.Result{}
	}
	return gjson.ParseBytes(resp.Bytes())
}
