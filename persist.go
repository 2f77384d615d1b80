package vcstore

import (
	"context"
	"os"

	"github.com/hupe1980/vcstore/internal/vectormap"
)

// sidecarPath returns the .vmap sidecar path for a clustering model path.
func sidecarPath(path string) string {
	return path + ".vmap"
}

// SaveIndex writes the clustering model to path (via strategy.Save) and a
// sidecar .vmap file with the vector-map in the on-device schema plus the
// id echo (spec.md §4.5 save_index, §6). Unlike every other operation,
// save_index is exempt from the closed-store ErrState rule (spec.md §4.5
// state machine): it only touches in-memory clustering/index state and a
// sidecar file, never s.dev, so it works whether or not the store is open.
func (s *Store) SaveIndex(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.saveIndexLocked(path)
	s.opts.logger.LogPersist(context.Background(), "save_index", path, err)
	return err
}

func (s *Store) saveIndexLocked(path string) error {
	if err := s.strategy.Save(path); err != nil {
		return translateError(wrapCause(ErrIO, err, "save clustering model to %s", path))
	}

	buf, err := vectormap.EncodeSidecar(s.index)
	if err != nil {
		return translateError(wrapCause(ErrFormat, err, "encode vector map sidecar"))
	}
	if err := os.WriteFile(sidecarPath(path), buf, 0644); err != nil {
		return translateError(wrapCause(ErrIO, err, "write sidecar %s", sidecarPath(path)))
	}
	return nil
}

// LoadIndex replaces in-memory state from the clustering model and .vmap
// sidecar at path, then re-persists device metadata to match (spec.md
// §4.5 load_index).
func (s *Store) LoadIndex(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.loadIndexLocked(path)
	s.opts.logger.LogPersist(context.Background(), "load_index", path, err)
	return err
}

func (s *Store) loadIndexLocked(path string) error {
	if err := s.requireWritable(); err != nil {
		return translateError(err)
	}

	if err := s.strategy.Load(path); err != nil {
		return translateError(wrapCause(ErrIO, err, "load clustering model from %s", path))
	}

	data, err := os.ReadFile(sidecarPath(path))
	if err != nil {
		return translateError(wrapCause(ErrIO, err, "read sidecar %s", sidecarPath(path)))
	}
	idx, err := vectormap.DecodeSidecar(data)
	if err != nil {
		return translateError(wrapCause(ErrFormat, err, "decode vector map sidecar"))
	}
	s.index = idx

	if err := s.persistAll(); err != nil {
		return translateError(err)
	}
	return nil
}
