package music

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestHTTPGetSendsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "hello world" {
			t.Errorf("key = %q, want %q", got, "hello world")
		}
		if got := r.URL.Query().Get("id"); got != "42" {
			t.Errorf("id = %q, want %q", got, "42")
		}
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer srv.Close()

	r := httpGet(srv.URL, url.Values{
		"key": []string{"hello world"},
		"id":  []string{"42"},
	})
	if !r.Get("data.ok").Bool() {
		t.Errorf("response not parsed: %q", r.Raw)
	}
}

func TestHTTPGetTransportFailure(t *testing.T) {
	r := httpGet("http://127.0.0.1:1", nil)
	if r.Raw != "" {
		t.Errorf("expected zero result, got %q", r.Raw)
	}
}
