package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const DefaultMaxSize = 2 * 1024 * 1024 // 2MB

// RotatingWriter appends to a log file and moves it to <path>.1 once it
// grows past maxSize. Only one backup is kept.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
}

func NewRotatingWriter(path string, maxSize int64) (*RotatingWriter, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	// Start fresh when a previous run left an oversized file behind
	if info, err := os.Stat(path); err == nil && info.Size() > maxSize {
		if err := os.Truncate(path, 0); err != nil {
			return nil, fmt.Errorf("truncate log: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return &RotatingWriter{
		file:    f,
		path:    path,
		size:    size,
		maxSize: maxSize,
	}, nil
}

// Setup sends the standard logger to stdout and the rotating file. The returned
// writer is also suitable for HTTP access logs.
func Setup(path string) (*RotatingWriter, io.Writer, error) {
	rw, err := NewRotatingWriter(path, DefaultMaxSize)
	if err != nil {
		return nil, os.Stdout, err
	}

	out := io.MultiWriter(os.Stdout, rw)
	log.SetOutput(out)
	return rw, out, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

func (w *RotatingWriter) rotate() {
	w.file.Close()
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		// Keep writing to the renamed file rather than losing lines
		if f, err = os.OpenFile(w.path+".1", os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return
		}
	}

	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
