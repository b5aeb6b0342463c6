package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/predicate"
	"github.com/AngelCh415/reporting-api/internal/utils"
)

type MongoConfig struct {
	URI            string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	ConnectRetries int
	AllowedTenants []string
}

// MongoTenants comparte un cliente; cada tenant es una base del mismo cluster.
type MongoTenants struct {
	client  *mongo.Client
	timeout time.Duration
	allowed map[string]struct{}
}

func ConnectMongo(ctx context.Context, cfg MongoConfig, log *slog.Logger) (*MongoTenants, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	err = utils.NewBackoff(500*time.Millisecond, cfg.ConnectRetries).Do(ctx, func(i int) error {
		pctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := client.Ping(pctx, readpref.Primary()); err != nil {
			log.Warn("mongo ping failed", slog.Int("attempt", i+1), slog.String("err", err.Error()))
			return err
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoTenants{client: client, timeout: cfg.QueryTimeout, allowed: allowSet(cfg.AllowedTenants)}, nil
}

func (t *MongoTenants) Tenant(_ context.Context, name string) (DataSource, error) {
	if err := checkTenant(name, t.allowed); err != nil {
		return nil, err
	}
	return &MongoStore{db: t.client.Database(name), timeout: t.timeout}, nil
}

func (t *MongoTenants) Ping(ctx context.Context) error {
	return t.client.Ping(ctx, readpref.Primary())
}

func (t *MongoTenants) Close(ctx context.Context) error { return t.client.Disconnect(ctx) }

type MongoStore struct {
	db      *mongo.Database
	timeout time.Duration
}

func (s *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MongoStore) Scan(ctx context.Context, collection string, p predicate.Predicate) ([]models.Record, error) {
	filter, err := Filter(p)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, observe("scan", fmt.Errorf("find %s: %w", collection, err))
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, observe("scan", fmt.Errorf("decode %s: %w", collection, err))
	}
	out := make([]models.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, normalize(d))
	}
	return out, observe("scan", nil)
}

// SumFields agrupa todo en un solo $group; $convert deja en 0 valores faltantes o mal formados.
func (s *MongoStore) SumFields(ctx context.Context, collection string, p predicate.Predicate, fields []string) (map[string]float64, error) {
	filter, err := Filter(p)
	if err != nil {
		return nil, err
	}
	group := bson.D{{Key: "_id", Value: nil}}
	for i, f := range fields {
		group = append(group, bson.E{Key: "f" + strconv.Itoa(i), Value: bson.M{"$sum": bson.M{"$convert": bson.M{
			"input": "$" + f, "to": "double", "onError": 0, "onNull": 0,
		}}}})
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: group}},
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	cur, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, observe("sum", fmt.Errorf("aggregate %s: %w", collection, err))
	}
	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, observe("sum", fmt.Errorf("decode %s: %w", collection, err))
	}
	out := make(map[string]float64, len(fields))
	for i, f := range fields {
		out[f] = 0
		if len(rows) > 0 {
			out[f] = models.Number(rows[0]["f"+strconv.Itoa(i)])
		}
	}
	return out, observe("sum", nil)
}

func (s *MongoStore) Distinct(ctx context.Context, collection, field string, p predicate.Predicate) ([]string, error) {
	filter, err := Filter(p)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	vals, err := s.db.Collection(collection).Distinct(ctx, field, filter)
	if err != nil {
		return nil, observe("distinct", fmt.Errorf("distinct %s.%s: %w", collection, field, err))
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range vals {
		str := models.Record{"v": v}.Str("v")
		if _, ok := seen[str]; ok || str == "" {
			continue
		}
		seen[str] = struct{}{}
		out = append(out, str)
	}
	sort.Strings(out)
	return out, observe("distinct", nil)
}

// normalize pasa tipos bson a los que entienden models.Number / models.Date.
func normalize(d bson.M) models.Record {
	r := make(models.Record, len(d))
	for k, v := range d {
		switch x := v.(type) {
		case primitive.DateTime:
			r[k] = x.Time().UTC()
		case primitive.Decimal128:
			r[k] = x.String()
		case primitive.ObjectID:
			r[k] = x.Hex()
		default:
			r[k] = v
		}
	}
	return r
}
