package kuwo

import (
	"crypto/tls"
	"time"

	"github.com/imroc/req/v3"
	"github.com/tidwall/gjson"
)

var httpClient = req.C().
	SetTimeout(10 * time.Second).
	SetTLSClientConfig(&tls.Config{
		MinVersion: tls.VersionTLS10,
		MaxVersion: tls.VersionTLS12,
	}).
	SetCommonHeaders(searchHeaders)

func getJSON(api string) (gjson.Result, error) {
	resp, err := httpClient.R().Get(api)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(resp.Bytes()), nil
}
