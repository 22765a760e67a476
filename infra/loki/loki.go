package loki

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	pushPath      = "/loki/api/v1/push"
	flushSize     = 20
	flushInterval = 1 * time.Second
)

// Writer buffers log lines and sends them to Loki's push API.
type Writer struct {
	url    string
	labels map[string]string
	client *http.Client
	mu     sync.Mutex
	buf    []entry
	ticker *time.Ticker
	done   chan struct{}
	now    func() time.Time
}

type entry struct {
	ts   string
	line string
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// NewWriter returns a Writer pushing to the Loki at url (e.g. http://loki:3100) under the
// given job label. It returns nil when url or job is empty.
func NewWriter(url, job string) *Writer {
	if url == "" || job == "" {
		return nil
	}
	w := &Writer{
		url:    strings.TrimSuffix(url, "/") + pushPath,
		labels: map[string]string{"job": job},
		client: &http.Client{Timeout: 5 * time.Second},
		buf:    make([]entry, 0, 64),
		ticker: time.NewTicker(flushInterval),
		done:   make(chan struct{}),
		now:    time.Now,
	}
	go w.flushLoop()
	return w
}

// Write implements io.Writer. Each newline-separated line becomes one Loki entry.
func (w *Writer) Write(p []byte) (n int, err error) {
	n = len(p)
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		w.mu.Lock()
		w.buf = append(w.buf, entry{
			ts:   strconv.FormatInt(w.now().UnixNano(), 10),
			line: string(line),
		})
		needFlush := len(w.buf) >= flushSize
		w.mu.Unlock()
		if needFlush {
			w.flush()
		}
	}
	return n, nil
}

// Sync flushes buffered lines; it lets the Writer back a zap core.
func (w *Writer) Sync() error {
	w.flush()
	return nil
}

func (w *Writer) flushLoop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.ticker.C:
			w.flush()
		}
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	if len(w.buf) == 0 {
		w.mu.Unlock()
		return
	}
	entries := w.buf
	w.buf = make([]entry, 0, 64)
	w.mu.Unlock()

	values := make([][]string, len(entries))
	for i, e := range entries {
		values[i] = []string{e.ts, e.line}
	}
	raw, err := json.Marshal(pushRequest{Streams: []stream{{Stream: w.labels, Values: values}}})
	if err != nil {
		return
	}
	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// Close flushes remaining buffer and stops the background flusher.
func (w *Writer) Close() error {
	w.ticker.Stop()
	close(w.done)
	w.flush()
	return nil
}
