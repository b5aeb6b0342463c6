package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/reporting-api/internal/apperr"
	"github.com/AngelCh415/reporting-api/internal/metrics"
	"github.com/AngelCh415/reporting-api/internal/store"
	"github.com/AngelCh415/reporting-api/internal/utils"
)

type router struct {
	log     *slog.Logger
	tenants store.Tenants
	opt     metrics.Options
}

func NewRouter(log *slog.Logger, tenants store.Tenants, opt metrics.Options, allowedOrigins []string) http.Handler {
	rt := &router{log: log, tenants: tenants, opt: opt}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(utils.Metrics)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }
	mux.Get("/healthz", ok)
	mux.Get("/health", ok)
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := tenants.Ping(r.Context()); err != nil {
			log.Warn("readiness check failed", slog.String("err", err.Error()))
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api", func(api chi.Router) {
		api.Get("/adsalesadspend/{databaseName}", rt.report("Ad sales and spend data retrieved successfully",
			func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
				return svc.AdSalesAdSpend(ctx, r.URL.Query())
			}))

		api.Route("/orders/{databaseName}", func(o chi.Router) {
			o.Get("/", rt.report("Orders retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.Orders(ctx, r.URL.Query())
				}))
			o.Get("/orderlist", rt.report("Order list retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.OrderList(ctx, r.URL.Query())
				}))
			o.Get("/dropdown-data", rt.report("Dropdown data retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.OrderDropdowns(ctx, r.URL.Query())
				}))
		})

		api.Route("/salesanalysis/{databaseName}", func(sa chi.Router) {
			sa.Get("/sales/region", rt.report("Regional sales data retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.RegionalSales(ctx, r.URL.Query())
				}))
			sa.Get("/adData/filterData", rt.report("Ad data retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.AdData(ctx, r.URL.Query())
				}))
			for path, field := range map[string]string{
				"/sku-list":        "sku",
				"/categories-list": "product_category",
				"/product-names":   "product_name",
				"/states":          "state",
			} {
				sa.Get(path, rt.distinct(field, nil))
			}
			sa.Get("/cities/{state}", rt.distinct("city", func(r *http.Request, v url.Values) {
				v.Set("state", chi.URLParam(r, "state"))
			}))
		})

		api.Get("/pnl/{databaseName}/pnl-data", rt.report("PNL data retrieved successfully",
			func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
				return svc.PnL(ctx, r.URL.Query())
			}))

		api.Route("/inventory/{databaseName}", func(inv chi.Router) {
			inv.Get("/", rt.report("Inventory retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.Inventory(ctx, r.URL.Query())
				}))
			inv.Get("/executive", rt.report("Inventory Executive data retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.Executive(ctx, r.URL.Query())
				}))
			inv.Get("/count-summary", rt.report("Inventory count summary retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.CountSummary(ctx, r.URL.Query())
				}))
			inv.Get("/stock-status-counts", rt.report("Stock status counts retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.StockStatusCounts(ctx, r.URL.Query())
				}))
			inv.Get("/overstock-data", rt.report("Overstock data retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.StockList(ctx, metrics.StockOverstock, false, r.URL.Query())
				}))
			inv.Get("/understock-data", rt.report("Understock data retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.StockList(ctx, metrics.StockUnderstock, false, r.URL.Query())
				}))
			inv.Get("/activeSKUoutofstock-data", rt.report("Active SKU out of stock data retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.StockList(ctx, metrics.StockUnderstock, true, r.URL.Query())
				}))
			inv.Get("/dropdown-data", rt.report("Inventory dropdown data retrieved successfully",
				func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
					return svc.InventoryDropdowns(ctx, r.URL.Query())
				}))
		})
	})

	return mux
}

type reportFunc func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error)

// report resuelve el tenant de la URL, arma el Service sobre su DataSource y serializa.
func (rt *router) report(msg string, fn reportFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := rt.tenants.Tenant(r.Context(), chi.URLParam(r, "databaseName"))
		if err != nil {
			rt.fail(w, r, err)
			return
		}
		out, err := fn(r.Context(), metrics.NewService(ds, rt.opt), r)
		if err != nil {
			rt.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: msg, Data: out})
	}
}

func (rt *router) distinct(field string, tweak func(*http.Request, url.Values)) http.HandlerFunc {
	return rt.report("Values retrieved successfully", func(ctx context.Context, svc *metrics.Service, r *http.Request) (any, error) {
		v := r.URL.Query()
		if tweak != nil {
			tweak(r, v)
		}
		return svc.OrderValues(ctx, field, v)
	})
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    apperr.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

// fail responde solo Code + Message; la causa queda en el log.
func (rt *router) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	status := apperr.Status(err)
	attrs := []any{
		slog.String("rid", utils.RID(r.Context())),
		slog.String("tenant", chi.URLParam(r, "databaseName")),
		slog.String("path", r.URL.Path),
		slog.String("code", string(e.Code)),
		slog.String("err", err.Error()),
	}
	if status >= 500 {
		rt.log.Error("report failed", attrs...)
	} else {
		rt.log.Info("report rejected", attrs...)
	}
	var body errorBody
	body.Error.Code = e.Code
	body.Error.Message = e.Message
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
