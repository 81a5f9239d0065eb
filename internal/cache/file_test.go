package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	fc, err := New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := fc.Get("https://example.com/api"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	entry := &Entry{
		Body:       []byte(`{"status":"ok"}`),
		ETag:       `"abc123"`,
		StatusCode: 200,
	}
	if err := fc.Set("https://example.com/api", entry); err != nil {
		t.Fatal(err)
	}

	got, ok := fc.Get("https://example.com/api")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got.Body) != `{"status":"ok"}` {
		t.Errorf("Body = %s", got.Body)
	}
	if got.ETag != `"abc123"` {
		t.Errorf("ETag = %q", got.ETag)
	}
	if got.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}

	// Different key, different entry.
	if _, ok := fc.Get("https://example.com/other"); ok {
		t.Error("unrelated key reported a hit")
	}
}

// Expired entries still come back, just flagged stale, so callers can
// revalidate with ETag/If-Modified-Since instead of refetching blind.
func TestGetExpired(t *testing.T) {
	fc, err := New(t.TempDir(), time.Nanosecond)
	if err != nil {
		t.Fatal(err)
	}

	if err := fc.Set("key", &Entry{Body: []byte("stale"), ETag: `"v1"`}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	entry, fresh := fc.Get("key")
	if fresh {
		t.Error("expired entry reported fresh")
	}
	if entry == nil {
		t.Fatal("expired entry should still be returned for revalidation")
	}
	if entry.ETag != `"v1"` {
		t.Errorf("ETag = %q", entry.ETag)
	}
}

func TestGetCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	fc, err := New(dir, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := fc.Set("key", &Entry{Body: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	// Corrupt the stored file in place.
	if err := os.WriteFile(fc.path("key"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := fc.Get("key"); ok {
		t.Error("corrupt entry reported a hit")
	}
	// Corrupt file is dropped so the next Set starts clean.
	if _, err := os.Stat(fc.path("key")); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestParquetPath(t *testing.T) {
	dir := t.TempDir()
	fc, err := New(dir, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(dir, "llms.parquet")
	if got := fc.ParquetPath("llms"); got != want {
		t.Errorf("ParquetPath = %q, want %q", got, want)
	}

	if fc.HasParquet("llms") {
		t.Error("HasParquet true before file exists")
	}
	if err := os.WriteFile(want, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fc.HasParquet("llms") {
		t.Error("HasParquet false after file written")
	}
}

func TestQuotaRoundTrip(t *testing.T) {
	fc, err := New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if q := fc.GetQuota(); q != nil {
		t.Errorf("GetQuota on empty cache = %+v, want nil", q)
	}

	if err := fc.SetQuota(&Quota{Limit: 1000, Remaining: 420, Reset: "2026-09-01"}); err != nil {
		t.Fatal(err)
	}

	q := fc.GetQuota()
	if q == nil {
		t.Fatal("GetQuota returned nil after SetQuota")
	}
	if q.Limit != 1000 || q.Remaining != 420 || q.Reset != "2026-09-01" {
		t.Errorf("quota = %+v", q)
	}
	if q.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestQuotaLow(t *testing.T) {
	tests := []struct {
		limit     int
		remaining int
		low       bool
	}{
		{1000, 500, false},
		{1000, 100, false}, // exactly 10% is not low
		{1000, 99, true},
		{1000, 0, true},
		{0, 0, false}, // unknown limit never reports low
	}

	for _, tt := range tests {
		q := Quota{Limit: tt.limit, Remaining: tt.remaining}
		if got := q.Low(); got != tt.low {
			t.Errorf("Quota{%d,%d}.Low() = %v, want %v", tt.limit, tt.remaining, got, tt.low)
		}
	}
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	fc, err := New(dir, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := fc.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 0 || stats.TotalSize != 0 {
		t.Errorf("empty cache stats = %+v", stats)
	}

	if err := fc.Set("a", &Entry{Body: []byte("aaaa")}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fc.ParquetPath("llms"), []byte("bbbbbbbb"), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err = fc.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalSize == 0 {
		t.Error("TotalSize = 0 with files present")
	}
	if stats.Dir != dir {
		t.Errorf("Dir = %q, want %q", stats.Dir, dir)
	}
}

func TestSizeHuman(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}

	for _, tt := range tests {
		s := Stats{TotalSize: tt.size}
		if got := s.SizeHuman(); got != tt.want {
			t.Errorf("SizeHuman(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	fc, err := New(dir, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := fc.Set("https://example.com/api", &Entry{Body: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fc.ParquetPath("llms"), []byte("p"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fc.SetQuota(&Quota{Limit: 10, Remaining: 5}); err != nil {
		t.Fatal(err)
	}
	// A stray file the cache does not own stays put.
	stray := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(stray, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := fc.Clear(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".parquet") || strings.HasSuffix(name, ".json") || len(name) == 64 {
			t.Errorf("Clear left %s behind", name)
		}
	}

	if _, err := os.Stat(stray); err != nil {
		t.Error("Clear removed a file it does not own")
	}
	if _, ok := fc.Get("https://example.com/api"); ok {
		t.Error("cache hit after Clear")
	}
}
