package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	sha := strings.Repeat("a1", 32)
	uuid := "0f8fad5b-d9cb-469f-a165-70867728950e"

	tests := []struct {
		path string
		want string
	}{
		{"/api/videos", "/api/videos"},
		{"/api/videos/" + sha, "/api/videos/{id}"},
		{"/api/videos/" + sha + "/favorite", "/api/videos/{id}/favorite"},
		{"/api/playlists/" + uuid, "/api/playlists/{id}"},
		{"/api/folders", "/api/folders"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLooksLikeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    string
		want bool
	}{
		{strings.Repeat("ab", 32), true},
		{"0f8fad5b-d9cb-469f-a165-70867728950e", true},
		{"videos", false},
		{strings.Repeat("G", 64), false},
		{strings.Repeat("a", 63), false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksLikeID(tt.s); got != tt.want {
			t.Errorf("looksLikeID(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestLoggerPreservesResponse(t *testing.T) {
	t.Parallel()

	handler := Logger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusTeapot)
	}
	if rr.Body.String() != "short and stout" {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestSanitizeLogField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/api/videos", "/api/videos"},
		{"/bad\npath", "/bad path"},
		{"/bad\rpath", "/bad path"},
		{"/bad\x00path", "/badpath"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"remote addr only", "10.0.0.1:4312", "", "10.0.0.1"},
		{"forwarded for", "10.0.0.1:4312", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain takes first", "10.0.0.1:4312", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompressionLargeJSON(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat(`{"name":"clip"},`, 200)
	handler := Compression()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}

	zr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("response is not valid gzip: %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != payload {
		t.Error("decompressed body does not match the original payload")
	}
}

func TestCompressionSkipsSmallResponses(t *testing.T) {
	t.Parallel()

	handler := Compression()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Content-Encoding = %q for a small response, want none", got)
	}
	if rr.Body.String() != `{"ok":true}` {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestCompressionSkipsIncompressibleTypes(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("frame", 500)
	handler := Compression()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte(payload))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/thumbnail/x", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Content-Encoding = %q for image data, want none", got)
	}
	if rr.Body.String() != payload {
		t.Error("body was altered")
	}
}

func TestCompressionSkipPrefixes(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat(`{"name":"clip"},`, 200)
	handler := Compression("/api/stream/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/stream/abc", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Content-Encoding = %q on a skipped prefix, want none", got)
	}
}

func TestCompressionRequiresAcceptEncoding(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat(`{"name":"clip"},`, 200)
	handler := Compression()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Content-Encoding = %q without Accept-Encoding, want none", got)
	}
	if rr.Body.String() != payload {
		t.Error("body was altered")
	}
}
