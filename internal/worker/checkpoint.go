package worker

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Checkpoint persists the set of processed record IDs after each completed
// item, so an interrupted run resumes without repeating work. Resume is
// idempotent: re-running with the same file skips already-processed IDs.
type Checkpoint struct {
	mu   sync.Mutex
	path string
	done map[string]bool
}

// LoadCheckpoint opens (or initializes) the checkpoint at path. A missing
// file is an empty checkpoint, not an error.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	cp := &Checkpoint{path: path, done: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	for _, id := range ids {
		cp.done[id] = true
	}
	return cp, nil
}

// Processed reports whether the record was completed in a prior run.
func (c *Checkpoint) Processed(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done[id]
}

// Mark records a completed item and flushes the file immediately; a crash
// after Mark loses no progress.
func (c *Checkpoint) Mark(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done[id] = true
	return c.flushLocked()
}

// Count returns the number of processed IDs.
func (c *Checkpoint) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.done)
}

// Reset discards the checkpoint state and removes the file.
func (c *Checkpoint) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = make(map[string]bool)
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

func (c *Checkpoint) flushLocked() error {
	ids := make([]string, 0, len(c.done))
	for id := range c.done {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}
