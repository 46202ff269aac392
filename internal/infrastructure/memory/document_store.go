// Package memory is an in-process DocumentStore used by tests, seeding and
// local runs with STORE_DRIVER=memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/repository"
)

type record struct {
	seq  uint64
	body json.RawMessage
}

type DocumentStore struct {
	mu          sync.RWMutex
	seq         uint64
	collections map[string]map[string]record
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string]map[string]record)}
}

func (s *DocumentStore) Insert(_ context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %v", domain.ErrValidation, collection, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]record)
		s.collections[collection] = coll
	}
	if _, ok := coll[id]; ok {
		return fmt.Errorf("%w: %s/%s already exists", domain.ErrConflict, collection, id)
	}
	s.seq++
	coll[id] = record{seq: s.seq, body: body}
	return nil
}

func (s *DocumentStore) Get(_ context.Context, collection, id string) (repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return repository.Document{}, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	return repository.Document{ID: id, Body: rec.body}, nil
}

func (s *DocumentStore) Replace(_ context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %v", domain.ErrValidation, collection, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	rec.body = body
	s.collections[collection][id] = rec
	return nil
}

func (s *DocumentStore) ReplaceIf(_ context.Context, collection, id string, match repository.Filter, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %v", domain.ErrValidation, collection, id, err)
	}
	want, err := normalize(match)
	if err != nil {
		return fmt.Errorf("%w: encode filter: %v", domain.ErrValidation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	same, err := matches(rec.body, want)
	if err != nil {
		return domain.Infra("replace "+collection, err)
	}
	if !same {
		return fmt.Errorf("%w: %s/%s changed concurrently", domain.ErrConflict, collection, id)
	}
	rec.body = body
	s.collections[collection][id] = rec
	return nil
}

func (s *DocumentStore) Delete(_ context.Context, collection string, ids ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[collection]
	n := 0
	for _, id := range ids {
		if _, ok := coll[id]; ok {
			delete(coll, id)
			n++
		}
	}
	return n, nil
}

func (s *DocumentStore) Find(_ context.Context, collection string, filter repository.Filter) ([]repository.Document, error) {
	want, err := normalize(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: encode filter: %v", domain.ErrValidation, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		seq uint64
		doc repository.Document
	}
	var hits []hit
	for id, rec := range s.collections[collection] {
		ok, err := matches(rec.body, want)
		if err != nil {
			return nil, domain.Infra("find "+collection, err)
		}
		if ok {
			hits = append(hits, hit{seq: rec.seq, doc: repository.Document{ID: id, Body: rec.body}})
		}
	}
	// insertion order, like created_at ordering in postgres
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })
	out := make([]repository.Document, len(hits))
	for i, h := range hits {
		out[i] = h.doc
	}
	return out, nil
}

// normalize round-trips the filter through JSON so values compare the way
// they are stored (numbers as float64, typed strings as string).
func normalize(filter repository.Filter) (map[string]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func matches(body json.RawMessage, want map[string]any) (bool, error) {
	if len(want) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return false, err
	}
	for k, v := range want {
		if !reflect.DeepEqual(doc[k], v) {
			return false, nil
		}
	}
	return true, nil
}

var _ repository.DocumentStore = (*DocumentStore)(nil)
