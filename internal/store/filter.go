package store

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AngelCh415/reporting-api/internal/predicate"
)

// Filter traduce un predicate a documento de filtro de Mongo.
func Filter(p predicate.Predicate) (bson.M, error) {
	switch q := p.(type) {
	case nil:
		return bson.M{}, nil
	case predicate.ValueRange:
		return bson.M{q.Field: bson.M{"$gte": q.From, "$lte": q.To}}, nil
	case predicate.StringPattern:
		return bson.M{q.Field: primitive.Regex{Pattern: q.Pattern}}, nil
	case predicate.BucketSet:
		return bson.M{q.Field: bson.M{"$in": q.Keys}}, nil
	case predicate.Equals:
		vals := matchValues([]string{q.Value})
		if len(vals) == 1 {
			return bson.M{q.Field: q.Value}, nil
		}
		return bson.M{q.Field: bson.M{"$in": vals}}, nil
	case predicate.In:
		return bson.M{q.Field: bson.M{"$in": matchValues(q.Values)}}, nil
	case predicate.Contains:
		return bson.M{q.Field: primitive.Regex{Pattern: regexp.QuoteMeta(q.Text), Options: "i"}}, nil
	case predicate.NumberCompare:
		return bson.M{q.Field: bson.M{"$" + string(q.Op): q.Value}}, nil
	case predicate.Any:
		if len(q) == 0 {
			return bson.M{"$expr": false}, nil
		}
		parts, err := filters(q)
		if err != nil {
			return nil, err
		}
		return bson.M{"$or": parts}, nil
	case predicate.All:
		switch len(q) {
		case 0:
			return bson.M{}, nil
		case 1:
			return Filter(q[0])
		}
		parts, err := filters(q)
		if err != nil {
			return nil, err
		}
		return bson.M{"$and": parts}, nil
	default:
		return nil, fmt.Errorf("mongo filter: unsupported predicate %T", p)
	}
}

// matchValues agrega la forma numérica de cada valor, así "12" también encuentra 12 guardado como número.
func matchValues(vals []string) bson.A {
	out := make(bson.A, 0, len(vals))
	for _, v := range vals {
		out = append(out, v)
		if n, ok := predicate.NumericValue(v); ok {
			out = append(out, n)
		}
	}
	return out
}

func filters(ps []predicate.Predicate) (bson.A, error) {
	out := make(bson.A, 0, len(ps))
	for _, p := range ps {
		f, err := Filter(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
