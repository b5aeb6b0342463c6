package store

import (
	"context"
	"sort"
	"sync"

	"github.com/AngelCh415/reporting-api/internal/apperr"
	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/predicate"
)

// MemoryStore guarda colecciones de un tenant en memoria. Sirve para tests y corridas locales.
type MemoryStore struct {
	mu    sync.RWMutex
	colls map[string][]models.Record
	fail  error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{colls: make(map[string][]models.Record)}
}

func (s *MemoryStore) Insert(collection string, recs ...models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colls[collection] = append(s.colls[collection], recs...)
}

// FailWith hace que toda operación posterior devuelva err (nil lo limpia).
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *MemoryStore) Scan(ctx context.Context, collection string, p predicate.Predicate) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, observe("scan", err)
	}
	var out []models.Record
	for _, r := range s.colls[collection] {
		if p == nil || p.Match(r) {
			out = append(out, r)
		}
	}
	return out, observe("scan", nil)
}

func (s *MemoryStore) SumFields(ctx context.Context, collection string, p predicate.Predicate, fields []string) (map[string]float64, error) {
	recs, err := s.Scan(ctx, collection, p)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		out[f] = 0
	}
	for _, r := range recs {
		for _, f := range fields {
			out[f] += models.Number(r[f])
		}
	}
	return out, nil
}

func (s *MemoryStore) Distinct(ctx context.Context, collection, field string, p predicate.Predicate) ([]string, error) {
	recs, err := s.Scan(ctx, collection, p)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range recs {
		v := r.Str(field)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) check(ctx context.Context) error {
	if s.fail != nil {
		return s.fail
	}
	return ctx.Err()
}

// MemoryTenants mapea nombre de base a MemoryStore.
type MemoryTenants struct {
	mu      sync.RWMutex
	dbs     map[string]*MemoryStore
	allowed map[string]struct{}
}

func NewMemoryTenants(allowed []string) *MemoryTenants {
	return &MemoryTenants{dbs: make(map[string]*MemoryStore), allowed: allowSet(allowed)}
}

// DB devuelve (creando si hace falta) el store del tenant.
func (t *MemoryTenants) DB(name string) *MemoryStore {
	t.mu.Lock()
	defer t.mu.Unlock()
	db, ok := t.dbs[name]
	if !ok {
		db = NewMemoryStore()
		t.dbs[name] = db
	}
	return db
}

func (t *MemoryTenants) Tenant(_ context.Context, name string) (DataSource, error) {
	if err := checkTenant(name, t.allowed); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	db, ok := t.dbs[name]
	if !ok {
		return nil, apperr.UnknownTenant(name)
	}
	return db, nil
}

func (t *MemoryTenants) Ping(ctx context.Context) error { return ctx.Err() }
