package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Search limits.
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// Hit is one matching user.
type Hit struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
}

// Search finds users whose handle or name matches q, best match first.
// An empty query returns no hits.
func (s *UserIndex) Search(ctx context.Context, q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	req.Fields = []string{"username", "name"}
	req.SortBy([]string{"-_score", "username"})

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["username"].(string); ok {
			hit.Username = v
		}
		if v, ok := h.Fields["name"].(string); ok {
			hit.Name = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildQuery ORs an exact handle match, handle prefix, name match and a
// one-edit fuzzy name match, weighted in that order.
func buildQuery(q string) query.Query {
	lower := strings.ToLower(q)

	exact := bleve.NewTermQuery(lower)
	exact.SetField("username")
	exact.SetBoost(5.0)

	prefix := bleve.NewPrefixQuery(lower)
	prefix.SetField("username")
	prefix.SetBoost(2.0)

	name := bleve.NewMatchQuery(q)
	name.SetField("name")
	name.SetBoost(3.0)

	fuzzy := bleve.NewFuzzyQuery(lower)
	fuzzy.SetField("name")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)

	return bleve.NewDisjunctionQuery(exact, prefix, name, fuzzy)
}
