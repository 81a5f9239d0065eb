package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/everstacklabs/modelfuse/internal/cache"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := New()
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"x-api-key": "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"status":"ok"}` {
		t.Errorf("Body = %s", resp.Body)
	}
	if resp.FromCache {
		t.Error("live fetch flagged as cache hit")
	}
	if resp.Header == nil {
		t.Error("live fetch should expose response headers")
	}
}

func TestGetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exhausted", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New()
	_, err := c.Get(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error does not carry the status: %v", err)
	}
}

func TestGetCached(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	fc, err := cache.New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c := New(WithCache(fc))

	for i := 0; i < 3; i++ {
		resp, err := c.Get(context.Background(), srv.URL, nil)
		if err != nil {
			t.Fatal(err)
		}
		if string(resp.Body) != "payload" {
			t.Errorf("Body = %s", resp.Body)
		}
		if wantCached := i > 0; resp.FromCache != wantCached {
			t.Errorf("request %d: FromCache = %v, want %v", i, resp.FromCache, wantCached)
		}
	}
	if hits != 1 {
		t.Errorf("server saw %d requests, want 1", hits)
	}
}

func TestGetNoCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	fc, err := cache.New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c := New(WithCache(fc), WithNoCache())

	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), srv.URL, nil); err != nil {
			t.Fatal(err)
		}
	}
	if hits != 2 {
		t.Errorf("server saw %d requests, want 2 with caching off", hits)
	}
}

// An expired entry with an ETag triggers a conditional fetch; 304 serves the
// stale body and restarts the TTL.
func TestGetConditionalFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte("original"))
	}))
	defer srv.Close()

	fc, err := cache.New(t.TempDir(), 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	c := New(WithCache(fc))

	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.FromCache {
		t.Fatal("first fetch must hit the server")
	}

	time.Sleep(20 * time.Millisecond) // let the entry expire

	resp, err = c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.FromCache {
		t.Error("304 revalidation should report a cache hit")
	}
	if string(resp.Body) != "original" {
		t.Errorf("Body = %s, want the cached body", resp.Body)
	}
}

func TestGetUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(WithUserAgent("modelfuse/0.3.0"))
	if _, err := c.Get(context.Background(), srv.URL, nil); err != nil {
		t.Fatal(err)
	}
	if gotUA != "modelfuse/0.3.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}
