// Package audit records staff actions (moderator and admin) in rotating
// JSON-lines files that admins can read back.
package audit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/oggyb/nameless/internal/config"
)

// Channel is one audit stream.
type Channel string

const (
	Moderator Channel = "moderator"
	Admin     Channel = "admin"
)

var tags = map[Channel]string{Moderator: "mdr", Admin: "adm"}

// Trail owns one rotating file per channel.
type Trail struct {
	dir     string
	mu      sync.Mutex
	writers map[Channel]*lumberjack.Logger
	loggers map[Channel]*slog.Logger
}

// New opens (lazily) the audit files under cfg.Audit.Dir.
func New(cfg *config.Config) (*Trail, error) {
	if err := os.MkdirAll(cfg.Audit.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit dir: %w", err)
	}

	t := &Trail{
		dir:     cfg.Audit.Dir,
		writers: map[Channel]*lumberjack.Logger{},
		loggers: map[Channel]*slog.Logger{},
	}
	for ch, tag := range tags {
		w := &lumberjack.Logger{
			Filename: t.path(ch),
			MaxSize:  cfg.Audit.RotationMB,
			MaxAge:   cfg.Audit.RetentionDays,
		}
		t.writers[ch] = w
		t.loggers[ch] = slog.New(slog.NewJSONHandler(w, nil)).With("tag", tag)
	}
	return t, nil
}

func (t *Trail) path(ch Channel) string {
	return filepath.Join(t.dir, string(ch)+".log")
}

// Record appends one entry to ch.
func (t *Trail) Record(ctx context.Context, ch Channel, action string, args ...any) {
	t.mu.Lock()
	l, ok := t.loggers[ch]
	t.mu.Unlock()
	if !ok {
		return
	}
	l.InfoContext(ctx, action, args...)
}

// Read returns up to limit most recent lines of ch (all lines when limit <= 0),
// oldest first. Rotated backups are not included.
func (t *Trail) Read(ch Channel, limit int) ([]string, error) {
	if _, ok := tags[ch]; !ok {
		return nil, fmt.Errorf("unknown audit channel %q", ch)
	}

	f, err := os.Open(t.path(ch))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return tail(f, limit)
}

func tail(r io.Reader, limit int) ([]string, error) {
	lines := []string{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if limit > 0 && len(lines) > limit {
			lines = lines[1:]
		}
	}
	return lines, sc.Err()
}

// Close flushes and closes every file.
func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for _, w := range t.writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
