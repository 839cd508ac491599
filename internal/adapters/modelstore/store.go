// Package modelstore locates and loads the model artifact used by the
// inference service. The artifact is optional: scoring never reads it, and a
// missing file only means readiness reports no model.
package modelstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/healthwatch/inference/pkg/logger"
	"github.com/healthwatch/inference/pkg/metrics"
)

// Artifact describes a loaded model file.
type Artifact struct {
	Path     string
	Size     int64
	Checksum string
	LoadedAt time.Time
}

// Store holds at most one loaded artifact.
type Store struct {
	dir  string
	name string
	log  logger.Logger
	now  func() time.Time

	mu       sync.RWMutex
	artifact *Artifact
}

// New creates a Store for the artifact at dir/name.
func New(dir, name string, opts ...Option) *Store {
	s := &Store{
		dir:  dir,
		name: name,
		log:  logger.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the full artifact path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.name)
}

// Load reads the artifact. A missing file is logged and reported as
// (false, nil); any other failure wraps ErrModelLoad.
func (s *Store) Load(ctx context.Context) (bool, error) {
	path := s.Path()

	if s.name == "" {
		return false, fmt.Errorf("%w: %w", ErrModelLoad, ErrEmptyName)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn(ctx, "model file not found, running without model", logger.String("path", path))
		s.set(nil)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %w", ErrModelLoad, path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%w: %s: %w", ErrModelLoad, path, ErrNotAFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", ErrModelLoad, path, err)
	}

	sum := sha256.Sum256(data)
	artifact := &Artifact{
		Path:     path,
		Size:     int64(len(data)),
		Checksum: hex.EncodeToString(sum[:]),
		LoadedAt: s.now(),
	}
	s.set(artifact)

	s.log.Info(ctx, "model loaded",
		logger.String("path", path),
		logger.Int("size_bytes", len(data)),
		logger.String("sha256", artifact.Checksum))
	return true, nil
}

// Loaded reports whether an artifact is currently held.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifact != nil
}

// Artifact returns the loaded artifact, or ErrNotLoaded.
func (s *Store) Artifact() (Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.artifact == nil {
		return Artifact{}, ErrNotLoaded
	}
	return *s.artifact, nil
}

// Unload drops the held artifact.
func (s *Store) Unload() {
	s.set(nil)
}

func (s *Store) set(a *Artifact) {
	s.mu.Lock()
	s.artifact = a
	s.mu.Unlock()
	metrics.UpdateModelLoaded(a != nil)
}
