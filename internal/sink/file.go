package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/feed"
)

// File appends dated entries as JSON lines, optionally zstd-compressed.
type File struct {
	path   string
	mu     sync.Mutex
	file   *os.File
	zw     *zstd.Encoder
	buf    *bufio.Writer
	logger *zap.Logger
}

// NewFile opens (or creates) path for appending. With compress set, each
// process run appends a new zstd frame, which zstd readers decode as one stream.
func NewFile(path string, compress bool, logger *zap.Logger) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating sink directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening sink file: %w", err)
	}

	s := &File{path: path, file: f, logger: logger}
	var w io.Writer = f
	if compress {
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		s.zw = zw
		w = zw
	}
	s.buf = bufio.NewWriter(w)
	return s, nil
}

func (s *File) Name() string { return "file" }

// Deliver writes one line per entry. Write failures are logged, not returned.
func (s *File) Deliver(_ context.Context, entry feed.DatedEntry) {
	line, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("encoding entry", zap.String("id", entry.Entry.ID), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.buf.Write(append(line, '\n')); err != nil {
		s.logger.Error("writing entry", zap.String("path", s.path), zap.Error(err))
		return
	}
	if err := s.flushLocked(); err != nil {
		s.logger.Error("flushing entry", zap.String("path", s.path), zap.Error(err))
	}
}

func (s *File) flushLocked() error {
	if err := s.buf.Flush(); err != nil {
		return err
	}
	if s.zw != nil {
		return s.zw.Flush()
	}
	return nil
}

// Close flushes pending data and closes the file.
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		_ = s.file.Close()
		return err
	}
	if s.zw != nil {
		if err := s.zw.Close(); err != nil {
			_ = s.file.Close()
			return err
		}
	}
	return s.file.Close()
}
