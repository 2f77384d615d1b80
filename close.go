package vcstore

// Close transitions the store to Closed and releases the device fd
// (spec.md §4.5 state machine, §5 "Fd lifecycle": closed exactly once).
// Every operation other than Initialize/OpenReadOnly/save_index issued
// after Close returns ErrState. save_index is the one exception: it reads
// only in-memory clustering/index state and writes a sidecar file, never
// the device, so it still succeeds once closed. load_index is not exempt —
// it ends up calling persistAll, which writes through s.dev.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}

	err := s.dev.Close()
	s.state = StateClosed
	s.dev = nil
	if err != nil {
		return translateError(wrapCause(ErrIO, err, "close device"))
	}
	return nil
}
