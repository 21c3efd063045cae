// Package recent keeps the list of recently searched places: at most
// MaxEntries names, most recent first, unique ignoring case. Every mutation
// is written through to a Storage before it returns.
package recent

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// StorageKey is the key the list is persisted under.
const StorageKey = "recentSearches"

// MaxEntries caps the list.
const MaxEntries = 5

// Store is the recent-search list. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	storage Storage
	entries []string
}

// Open loads the list from storage. A value that is not a JSON array of
// strings is discarded and the list starts empty; it is overwritten on the
// next mutation.
func Open(storage Storage) (*Store, error) {
	raw, ok, err := storage.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("loading recent searches: %w", err)
	}

	s := &Store{storage: storage}
	if !ok {
		return s, nil
	}

	var stored []string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return s, nil
	}
	s.entries = normalize(stored)
	return s, nil
}

// List returns a copy of the entries, most recent first.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Add records name as the most recent search. An entry equal to name
// ignoring case is replaced, so the newest spelling wins. Blank names are
// ignored.
func (s *Store) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(insert(s.entries, name))
}

// Remove deletes the entry exactly equal to name. Missing names are a no-op.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.entries, name)
	if i < 0 {
		return nil
	}
	return s.commit(slices.Delete(slices.Clone(s.entries), i, i+1))
}

// Clear empties the list and deletes the stored key.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(StorageKey); err != nil {
		return fmt.Errorf("clearing recent searches: %w", err)
	}
	s.entries = nil
	return nil
}

// commit persists next and only then makes it current.
func (s *Store) commit(next []string) error {
	if next == nil {
		next = []string{}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding recent searches: %w", err)
	}
	if err := s.storage.Set(StorageKey, raw); err != nil {
		return fmt.Errorf("saving recent searches: %w", err)
	}
	s.entries = next
	return nil
}

// insert returns a new list with name in front, any case-insensitive
// duplicate removed and the length capped at MaxEntries.
func insert(entries []string, name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return entries
	}

	out := make([]string, 0, MaxEntries)
	out = append(out, name)
	for _, e := range entries {
		if len(out) == MaxEntries {
			break
		}
		if !strings.EqualFold(e, name) {
			out = append(out, e)
		}
	}
	return out
}

// normalize keeps the first occurrence of each name ignoring case, drops
// blanks and caps the result at MaxEntries.
func normalize(stored []string) []string {
	out := make([]string, 0, MaxEntries)
	for _, name := range stored {
		name = strings.TrimSpace(name)
		if name == "" || slices.ContainsFunc(out, func(e string) bool { return strings.EqualFold(e, name) }) {
			continue
		}
		out = append(out, name)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}
