package store

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	// index name -> index value -> set of record keys
	indexes map[string]map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		indexes: make(map[string]map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, NotFound(key)
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Put(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.records[rec.Key]; ok {
		s.dropIndexEntries(old)
	}
	stored := cloneRecord(rec)
	s.records[rec.Key] = stored
	for name, value := range stored.Indexes {
		byValue := s.indexes[name]
		if byValue == nil {
			byValue = make(map[string]map[string]struct{})
			s.indexes[name] = byValue
		}
		keys := byValue[value]
		if keys == nil {
			keys = make(map[string]struct{})
			byValue[value] = keys
		}
		keys[stored.Key] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.records[key]; ok {
		s.dropIndexEntries(old)
		delete(s.records, key)
	}
	return nil
}

func (s *MemoryStore) ByIndex(ctx context.Context, index, value string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for key := range s.indexes[index][value] {
		if rec, ok := s.records[key]; ok {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

// dropIndexEntries removes old's keys from every index. Caller holds the
// write lock.
func (s *MemoryStore) dropIndexEntries(old *Record) {
	for name, value := range old.Indexes {
		if keys := s.indexes[name][value]; keys != nil {
			delete(keys, old.Key)
			if len(keys) == 0 {
				delete(s.indexes[name], value)
			}
		}
	}
}

// cloneRecord copies a record so callers cannot alias stored state.
func cloneRecord(rec *Record) *Record {
	out := &Record{Key: rec.Key, Value: append([]byte(nil), rec.Value...)}
	if rec.Indexes != nil {
		out.Indexes = make(map[string]string, len(rec.Indexes))
		for k, v := range rec.Indexes {
			out.Indexes[k] = v
		}
	}
	return out
}
