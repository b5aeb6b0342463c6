package store

import (
	"context"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AngelCh415/reporting-api/internal/apperr"
	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/predicate"
)

// DataSource is one tenant's document database. A nil predicate matches every record.
type DataSource interface {
	Scan(ctx context.Context, collection string, p predicate.Predicate) ([]models.Record, error)
	SumFields(ctx context.Context, collection string, p predicate.Predicate, fields []string) (map[string]float64, error)
	Distinct(ctx context.Context, collection, field string, p predicate.Predicate) ([]string, error)
}

// Tenants hands out the DataSource bound to a tenant database name.
type Tenants interface {
	Tenant(ctx context.Context, name string) (DataSource, error)
	Ping(ctx context.Context) error
}

var tenantName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,63}$`)

// checkTenant valida el nombre y, si hay allowlist, que esté en ella.
func checkTenant(name string, allowed map[string]struct{}) error {
	if !tenantName.MatchString(name) {
		return apperr.UnknownTenant(name)
	}
	if len(allowed) > 0 {
		if _, ok := allowed[name]; !ok {
			return apperr.UnknownTenant(name)
		}
	}
	return nil
}

func allowSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

var opsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "reporting_store_operations_total",
	Help: "Data store operations by operation and result.",
}, []string{"op", "result"})

func init() { prometheus.MustRegister(opsTotal) }

// observe cuenta la operación y envuelve cualquier falla como DataAccessFailure.
func observe(op string, err error) error {
	if err != nil {
		opsTotal.WithLabelValues(op, "error").Inc()
		return apperr.DataAccess(err)
	}
	opsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}
