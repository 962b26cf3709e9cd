package state

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	enum "github.com/goliatone/go-enum"
)

// FileStore keeps one file per identifier under Root. Each file holds a single
// newline-terminated record; metadata lives in a YAML sidecar next to it.
type FileStore struct {
	Root string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir}
}

func (s *FileStore) paths(ref Ref) (string, string, error) {
	if s.Root == "" {
		return "", "", fmt.Errorf("state: file store root is required")
	}
	key, err := ref.Identifier()
	if err != nil {
		return "", "", err
	}
	if strings.Contains(key, "..") {
		return "", "", fmt.Errorf("state: invalid identifier %q", key)
	}
	base := filepath.Join(s.Root, filepath.FromSlash(key))
	return base + ".txt", base + ".meta.yaml", nil
}

func (s *FileStore) Load(_ context.Context, ref Ref) (string, Meta, bool, error) {
	recordPath, metaPath, err := s.paths(ref)
	if err != nil {
		return "", Meta{}, false, err
	}
	f, err := os.Open(recordPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", Meta{}, false, nil
	}
	if err != nil {
		return "", Meta{}, false, fmt.Errorf("state: %w", err)
	}
	defer f.Close()

	record, err := enum.ReadRecord(bufio.NewReader(f))
	if err != nil && !errors.Is(err, io.EOF) {
		return "", Meta{}, false, fmt.Errorf("state: read %s: %w", recordPath, err)
	}

	var meta Meta
	raw, err := os.ReadFile(metaPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return "", Meta{}, false, fmt.Errorf("state: %w", err)
	default:
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return "", Meta{}, false, fmt.Errorf("state: decode %s: %w", metaPath, err)
		}
	}
	return record, meta, true, nil
}

func (s *FileStore) Save(_ context.Context, ref Ref, record string, meta Meta) (Meta, error) {
	if strings.ContainsAny(record, "\r\n") {
		return Meta{}, fmt.Errorf("state: record %q spans more than one line", record)
	}
	recordPath, metaPath, err := s.paths(ref)
	if err != nil {
		return Meta{}, err
	}
	if err := os.MkdirAll(filepath.Dir(recordPath), 0o755); err != nil {
		return Meta{}, fmt.Errorf("state: %w", err)
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return Meta{}, fmt.Errorf("state: encode meta: %w", err)
	}
	previous, err := os.ReadFile(recordPath)
	hadRecord := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Meta{}, fmt.Errorf("state: %w", err)
	}

	// Record first, then sidecar. A failed sidecar write restores the record.
	if err := writeAtomic(recordPath, []byte(record+"\n")); err != nil {
		return Meta{}, err
	}
	if err := writeAtomic(metaPath, raw); err != nil {
		if hadRecord {
			_ = writeAtomic(recordPath, previous)
		} else {
			_ = os.Remove(recordPath)
		}
		return Meta{}, err
	}
	return cloneMeta(meta), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	return nil
}
