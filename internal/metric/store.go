// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Centralised in-memory tables of measured metrics.

package metric

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrRecordNotFound = errors.New("record not found")

type ID int64

// Store is a table of records of type R. IDs grow monotonically, so ordering by ID
// gives insertion order.
type Store[R any] struct {
	mu      sync.RWMutex
	records map[ID]R
	next    ID
}

func NewStore[R any]() *Store[R] {
	return &Store[R]{
		records: make(map[ID]R),
	}
}

func (s *Store[R]) Insert(r R) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[s.next] = r
	id := s.next
	s.next++

	return id
}

func (s *Store[R]) Get(id ID) (R, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return r, fmt.Errorf("getting record: %w", ErrRecordNotFound)
	}

	return r, nil
}

func (s *Store[R]) Exists(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.records[id]

	return exists
}

// GetIDs returns IDs of all records in insertion order.
func (s *Store[R]) GetIDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]ID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store[R]) Update(id ID, r R) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return fmt.Errorf("updating record: %w", ErrRecordNotFound)
	}

	s.records[id] = r
	return nil
}

func (s *Store[R]) Delete(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return fmt.Errorf("deleting record: %w", ErrRecordNotFound)
	}

	delete(s.records, id)
	return nil
}

func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Select returns records matching predicate in insertion order. A nil predicate
// matches all records.
func (s *Store[R]) Select(match func(R) bool) []R {
	ids := s.GetIDs()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []R
	for _, id := range ids {
		r, ok := s.records[id]
		if !ok {
			// Deleted in between.
			continue
		}
		if match == nil || match(r) {
			rows = append(rows, r)
		}
	}
	return rows
}
