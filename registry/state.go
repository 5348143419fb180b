package registry

// LoadingInitial reports whether the registry has yet to complete its first
// load, or has a list or single-record fetch in flight.
func (r *Registry) LoadingInitial() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.awaitingFirst || r.loads > 0
}

// Submitting reports whether any create, update or delete is in flight.
func (r *Registry) Submitting() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending) > 0
}

// Target returns the control of the most recently started delete that is
// still in flight, or "" when no delete is pending.
func (r *Registry) Target() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest Pending
	for _, p := range r.pending {
		if p.Op == OpDelete && p.seq > latest.seq {
			latest = p
		}
	}
	return latest.Control
}

// Pending returns the most recently started in-flight write for the record
// with the given id.
func (r *Registry) Pending(id string) (Pending, bool) {
	p, ok := r.PendingAll()[id]
	return p, ok
}

// PendingAll returns the most recently started in-flight write of every
// record that has one, keyed by record id.
func (r *Registry) PendingAll() map[string]Pending {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Pending, len(r.pending))
	for _, p := range r.pending {
		if cur, ok := out[p.ID]; !ok || p.seq > cur.seq {
			out[p.ID] = p
		}
	}
	return out
}

// begin records a write in flight and returns the token to pass to endLocked.
func (r *Registry) begin(id string, op Op, control string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.pending[r.seq] = Pending{
		ID:      id,
		Op:      op,
		Control: control,
		Since:   r.now(),
		seq:     r.seq,
	}
	return r.seq
}

// endLocked must be called with r.mu held.
func (r *Registry) endLocked(seq uint64) {
	delete(r.pending, seq)
}
