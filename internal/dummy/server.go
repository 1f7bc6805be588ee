// Package dummy is a local target server for trying out load runs.
package dummy

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ServerConfig struct {
	Port int
}

// sleep waits d or until the client goes away.
func sleep(r *http.Request, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-r.Context().Done():
		return false
	case <-t.C:
		return true
	}
}

func jitter(minMs, spanMs int) time.Duration {
	return time.Duration(rand.IntN(spanMs)+minMs) * time.Millisecond
}

// NewMux returns the handler with all endpoints:
//
//	/fast         10-50ms
//	/medium       100-300ms
//	/slow         1-2s, good for timeouts and queuing
//	/spike        usually 20ms, 5% of calls take 2s
//	/error        20% 500, 20% 429, otherwise 200
//	/status/{code} always answers with code
//	/echo         returns method, headers and the decoded body as JSON
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/fast", func(w http.ResponseWriter, r *http.Request) {
		if sleep(r, jitter(10, 40)) {
			w.Write([]byte("Fast response"))
		}
	})

	mux.HandleFunc("/medium", func(w http.ResponseWriter, r *http.Request) {
		if sleep(r, jitter(100, 200)) {
			w.Write([]byte("Medium response"))
		}
	})

	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		if sleep(r, jitter(1000, 1000)) {
			w.Write([]byte("Slow response"))
		}
	})

	// P99 will be terrible, P50 will be fine.
	mux.HandleFunc("/spike", func(w http.ResponseWriter, r *http.Request) {
		d := 20 * time.Millisecond
		if rand.Float32() < 0.05 {
			d = 2 * time.Second
		}

		if sleep(r, d) {
			w.Write([]byte("Spikey response"))
		}
	})

	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		rnd := rand.Float32()
		if rnd < 0.2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("500 Internal Server Error"))
		} else if rnd < 0.4 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("429 Too Many Requests"))
		} else {
			w.Write([]byte("OK"))
		}
	})

	mux.HandleFunc("/status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil || code < 100 || code > 599 {
			http.Error(w, "bad status code", http.StatusBadRequest)
			return
		}

		w.WriteHeader(code)
		fmt.Fprintf(w, "%d %s", code, http.StatusText(code))
	})

	mux.HandleFunc("/echo", echo)

	return mux
}

// Echo is the JSON document answered by /echo.
type Echo struct {
	Method  string              `json:"method"`
	Headers map[string]string   `json:"headers"`
	JSON    any                 `json:"json,omitempty"`
	Form    map[string][]string `json:"form,omitempty"`
	Files   map[string]string   `json:"files,omitempty"`
	Raw     string              `json:"raw,omitempty"`
}

func echo(w http.ResponseWriter, r *http.Request) {
	e := Echo{
		Method:  r.Method,
		Headers: make(map[string]string, len(r.Header)),
	}

	for k := range r.Header {
		e.Headers[k] = r.Header.Get(k)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case mediaType == "application/json":
		if err := json.NewDecoder(r.Body).Decode(&e.JSON); err != nil && err != io.EOF {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e.Form = r.PostForm
	case strings.HasPrefix(mediaType, "multipart/"):
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e.Form = r.MultipartForm.Value
		e.Files = make(map[string]string)

		for field, headers := range r.MultipartForm.File {
			if len(headers) > 0 {
				e.Files[field] = headers[0].Filename
			}
		}
	default:
		b, _ := io.ReadAll(r.Body)
		e.Raw = string(b)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Echo", "1")
	json.NewEncoder(w).Encode(e)
}

// Start serves NewMux on cfg.Port in the background and returns the server so the
// caller can shut it down.
func Start(cfg ServerConfig) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("👻 Dummy Server running on http://localhost%s\n", addr)
	fmt.Println("   Endpoints: /fast, /medium, /slow, /spike, /error, /status/{code}, /echo")

	server := &http.Server{
		Addr:              addr,
		Handler:           NewMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("dummy server failed", "addr", addr, "error", err)
		}
	}()

	return server
}
