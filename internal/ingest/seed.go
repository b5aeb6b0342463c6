package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/store"
)

// Seed es un fixture: tenant -> colección -> documentos.
// Las fechas nativas van como {"$date": "2025-03-05T00:00:00Z"}.
type Seed struct {
	Tenants map[string]map[string][]map[string]any `json:"tenants"`
}

// Load lee el fixture de un archivo local o de una URL http(s).
func Load(ctx context.Context, c HTTPClient, src string) (*Seed, error) {
	var seed Seed
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if err := GetJSONWithRetry(ctx, c, src, &seed); err != nil {
			return nil, fmt.Errorf("fetch seed: %w", err)
		}
		return &seed, nil
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &seed, nil
}

// Apply carga el fixture en los tenants en memoria y devuelve cuántos documentos insertó.
func (s *Seed) Apply(t *store.MemoryTenants, log *slog.Logger) int {
	n := 0
	for tenant, colls := range s.Tenants {
		db := t.DB(tenant)
		for coll, docs := range colls {
			recs := make([]models.Record, 0, len(docs))
			for _, d := range docs {
				recs = append(recs, toRecord(d))
			}
			db.Insert(coll, recs...)
			n += len(recs)
			log.Debug("seeded collection", slog.String("tenant", tenant), slog.String("collection", coll), slog.Int("docs", len(recs)))
		}
	}
	return n
}

func toRecord(d map[string]any) models.Record {
	r := make(models.Record, len(d))
	for k, v := range d {
		r[k] = value(v)
	}
	return r
}

func value(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if raw, ok := obj["$date"].(string); ok && len(obj) == 1 {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t
		}
	}
	return toRecord(obj)
}
