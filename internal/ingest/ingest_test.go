package ingest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/reporting-api/internal/predicate"
	"github.com/AngelCh415/reporting-api/internal/store"
)

// helper: hace la petición y devuelve código HTTP + error de red (si hubo)
func fetchURL(c HTTPClient, url string) (int, error) {
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func TestHTTPClientHandles500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	code, err := fetchURL(NewHTTPClient(2*time.Second), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestHTTPClientHandlesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := fetchURL(NewHTTPClient(50*time.Millisecond), srv.URL)
	assert.Error(t, err)
}

func TestGetJSONWithRetryRecovers(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"tenants":{"acme":{"orders":[{"order_id":"A"}]}}}`)
	}))
	defer srv.Close()

	seed, err := Load(context.Background(), NewHTTPClient(time.Second), srv.URL)
	require.NoError(t, err)
	assert.Len(t, seed.Tenants["acme"]["orders"], 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetJSONWithRetryGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	var dst map[string]any
	err := GetJSONWithRetry(context.Background(), NewHTTPClient(time.Second), srv.URL, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadFileAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"tenants": {
			"acme": {
				"orders": [
					{"order_id": "A", "purchase_date": {"$date": "2025-03-05T10:00:00Z"}, "total_sales": 10},
					{"order_id": "B", "purchase_date": "6-Mar-2025", "total_sales": "5"}
				],
				"inventory": [{"sku": "S1", "meta": {"bin": "A1"}}]
			}
		}
	}`), 0o600))

	seed, err := Load(context.Background(), NewHTTPClient(time.Second), path)
	require.NoError(t, err)

	tenants := store.NewMemoryTenants(nil)
	n := seed.Apply(tenants, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, 3, n)

	ds, err := tenants.Tenant(context.Background(), "acme")
	require.NoError(t, err)
	recs, err := ds.Scan(context.Background(), "orders", predicate.Equals{Field: "order_id", Value: "A"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC), recs[0]["purchase_date"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), NewHTTPClient(time.Second), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
