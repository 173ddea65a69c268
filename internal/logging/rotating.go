package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RotatingFile appends log lines to one file and keeps a single predecessor:
// when the next write would push the file past the size cap, the current
// file is renamed to "<path>.O" and a fresh one is started. The path
// keywords "stderr" (or "-") and "stdout" write to the process streams
// instead; "", "none" and "off" drop everything.
type RotatingFile struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	stream  *os.File // non-nil when the target is a process stream
	discard bool
}

func NewRotatingFile(path string, maxSize int64) *RotatingFile {
	r := &RotatingFile{path: strings.TrimSpace(path), maxSize: maxSize}
	switch strings.ToLower(r.path) {
	case "", "none", "off":
		r.discard = true
	case "stderr", "-":
		r.stream = os.Stderr
	case "stdout":
		r.stream = os.Stdout
	}
	return r
}

func (r *RotatingFile) Enabled() bool {
	return r != nil && !r.discard
}

func (r *RotatingFile) WriteLine(line string) error {
	if r == nil {
		return nil
	}
	_, err := r.Write([]byte(line + "\n"))
	return err
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	if r == nil {
		return len(p), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.discard {
		return len(p), nil
	}
	if r.stream != nil {
		return r.stream.Write(p)
	}
	if dir := filepath.Dir(r.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	if err := r.rotate(int64(len(p))); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.Write(p)
}

// rotate shifts the current file aside when the pending write would exceed
// the size cap. The previous backup is dropped; only one generation is kept.
func (r *RotatingFile) rotate(pending int64) error {
	if r.maxSize <= 0 {
		return nil
	}
	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size()+pending <= r.maxSize {
		return nil
	}
	backup := r.path + ".O"
	_ = os.Remove(backup)
	if err := os.Rename(r.path, backup); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ io.Writer = (*RotatingFile)(nil)
