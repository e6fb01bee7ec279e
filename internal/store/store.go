package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ppiankov/crosscheck/internal/model"
)

// Store is the in-memory record collection, loaded from tier-partitioned
// JSON files. Records are never deleted; suspected-fabricated entries move
// to a quarantine set instead.
type Store struct {
	mu         sync.RWMutex
	records    map[string]*model.IncidentRecord
	quarantine map[string]quarantined
}

// quarantined keeps the full record alongside the reason it was pulled, so
// quarantining never loses data.
type quarantined struct {
	record *model.IncidentRecord
	reason string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		records:    make(map[string]*model.IncidentRecord),
		quarantine: make(map[string]quarantined),
	}
}

// Load reads one or more JSON files, each holding an array of records, and
// merges them into a new store. Duplicate IDs and schema violations fail
// the load; ingestion problems belong at load time, not verification time.
func Load(paths ...string) (*Store, error) {
	s := New()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		var records []*model.IncidentRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		for _, rec := range records {
			if err := rec.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if err := s.Add(rec); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return s, nil
}

// Add inserts a record. The ID must be unique within the store.
func (s *Store) Add(rec *model.IncidentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("duplicate record id: %s", rec.ID)
	}
	s.records[rec.ID] = rec
	return nil
}

// Get returns the record with the given ID.
func (s *Store) Get(id string) (*model.IncidentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Len returns the number of active (non-quarantined) records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// IDs returns all active record IDs in sorted order, for deterministic
// iteration across runs.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns the active records ordered by ID.
func (s *Store) All() []*model.IncidentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*model.IncidentRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.records[id])
	}
	return out
}

// Quarantine moves a record out of the active set with a reason. The record
// is retained, never dropped.
func (s *Store) Quarantine(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("quarantine: no such record: %s", id)
	}
	delete(s.records, id)
	s.quarantine[id] = quarantined{record: rec, reason: reason}
	return nil
}

// Quarantined returns the quarantined IDs and reasons.
func (s *Store) Quarantined() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.quarantine))
	for id, q := range s.quarantine {
		out[id] = q.reason
	}
	return out
}

// QuarantinedRecord returns a quarantined record with its reason.
func (s *Store) QuarantinedRecord(id string) (*model.IncidentRecord, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quarantine[id]
	if !ok {
		return nil, "", false
	}
	return q.record, q.reason, true
}

// Save writes the active records to a JSON file, ordered by ID.
func (s *Store) Save(path string) error {
	data, err := json.MarshalIndent(s.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}
