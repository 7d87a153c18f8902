package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Streamed media is already compressed; gzip only helps the JSON API.
var compressibleTypes = map[string]bool{
	"application/json": true,
	"text/plain":       true,
	"text/html":        true,
}

const compressionMinSize = 1024

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	},
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	buffer      []byte
	statusCode  int
	finalized   bool
	compressing bool
}

func (g *gzipResponseWriter) WriteHeader(code int) {
	if !g.finalized {
		g.statusCode = code
	}
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	if g.finalized {
		if g.compressing {
			return g.gz.Write(b)
		}
		return g.ResponseWriter.Write(b)
	}
	g.buffer = append(g.buffer, b...)
	if len(g.buffer) > compressionMinSize {
		g.finalize()
	}
	return len(b), nil
}

// finalize decides once, based on size and content type, whether the
// buffered response gets compressed.
func (g *gzipResponseWriter) finalize() {
	if g.finalized {
		return
	}
	g.finalized = true

	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(g.Header().Get("Content-Type"), ";")[0]))
	g.compressing = len(g.buffer) >= compressionMinSize && compressibleTypes[mediaType]

	if g.compressing {
		g.Header().Del("Content-Length")
		g.Header().Set("Content-Encoding", "gzip")
		g.Header().Add("Vary", "Accept-Encoding")

		g.gz = gzipWriterPool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
		g.ResponseWriter.WriteHeader(g.statusCode)
		g.gz.Write(g.buffer)
	} else {
		g.ResponseWriter.WriteHeader(g.statusCode)
		g.ResponseWriter.Write(g.buffer)
	}
	g.buffer = nil
}

func (g *gzipResponseWriter) close() error {
	g.finalize()
	if g.gz != nil {
		err := g.gz.Close()
		gzipWriterPool.Put(g.gz)
		g.gz = nil
		return err
	}
	return nil
}

func (g *gzipResponseWriter) Flush() {
	g.finalize()
	if g.gz != nil {
		g.gz.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compression gzips API responses for clients that accept it. Paths
// with any of the given prefixes bypass compression entirely, which
// keeps range requests on the stream route intact.
func Compression(skipPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}
			for _, prefix := range skipPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			gzw := &gzipResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			defer gzw.close()
			next.ServeHTTP(gzw, r)
		})
	}
}
