package storage

import "sync"

// Overlay stages writes on top of a base database. Reads consult the staged
// writes first and fall through to the base. Nothing reaches the base until
// Commit; discarding the overlay discards every staged mutation. This gives
// callers all-or-nothing semantics for a unit of work evaluated against live
// state.
type Overlay struct {
	mu      sync.RWMutex
	base    Database
	writes  map[string][]byte
	deletes map[string]struct{}
}

// NewOverlay creates an overlay staging area over base.
func NewOverlay(base Database) *Overlay {
	return &Overlay{
		base:    base,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (o *Overlay) Put(key []byte, value []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	k := string(key)
	delete(o.deletes, k)
	o.writes[k] = append([]byte(nil), value...)
	return nil
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	k := string(key)
	if _, gone := o.deletes[k]; gone {
		return nil, ErrKeyNotFound
	}
	if value, ok := o.writes[k]; ok {
		return append([]byte(nil), value...), nil
	}
	return o.base.Get(key)
}

func (o *Overlay) Delete(key []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	k := string(key)
	delete(o.writes, k)
	o.deletes[k] = struct{}{}
	return nil
}

// WriteBatch stages the batch like individual Put and Delete calls would.
func (o *Overlay) WriteBatch(batch Batch) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for k := range batch.Deletes {
		delete(o.writes, k)
		o.deletes[k] = struct{}{}
	}
	for k, v := range batch.Writes {
		delete(o.deletes, k)
		o.writes[k] = append([]byte(nil), v...)
	}
	return nil
}

// Close satisfies the Database interface. The base remains open; an overlay
// that is closed without Commit simply drops its staged writes.
func (o *Overlay) Close() {}

// Commit hands the staged writes and deletes to the base as one atomic batch,
// so no reader of the base ever sees part of a unit of work. The overlay is
// reset afterwards and may be reused.
func (o *Overlay) Commit() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.writes) == 0 && len(o.deletes) == 0 {
		return nil
	}
	if err := o.base.WriteBatch(Batch{Writes: o.writes, Deletes: o.deletes}); err != nil {
		return err
	}
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
	return nil
}
