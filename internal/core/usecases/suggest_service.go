package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/core/ports"
	"github.com/samirrijal/saferoute/internal/pkg/logging"
	"github.com/samirrijal/saferoute/internal/pkg/metrics"
)

// MinSuggestQueryLen is the shortest query forwarded to the provider.
const MinSuggestQueryLen = 3

const suggestCacheTTL = 300

// SuggestService handles address typeahead.
type SuggestService struct {
	provider ports.RoutingProvider
	cache    ports.CacheService
	limit    int
}

// NewSuggestService creates a new SuggestService. cache may be nil.
func NewSuggestService(provider ports.RoutingProvider, cache ports.CacheService, limit int) *SuggestService {
	if limit <= 0 {
		limit = 5
	}
	return &SuggestService{provider: provider, cache: cache, limit: limit}
}

// Suggest returns address candidates for q. Queries shorter than three
// characters return an empty list without calling the provider. Provider
// failures return an empty list together with the error.
func (s *SuggestService) Suggest(ctx context.Context, q string) ([]domain.Suggestion, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinSuggestQueryLen {
		return []domain.Suggestion{}, nil
	}

	// Try cache
	cacheKey := fmt.Sprintf("suggest:%s:%d", strings.ToLower(q), s.limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached []domain.Suggestion
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.CacheHits.WithLabelValues("suggest").Inc()
				return cached, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("suggest").Inc()
	}

	suggestions, err := s.provider.Suggest(ctx, q, s.limit)
	if err != nil {
		logging.FromContext(ctx).Error("suggestion lookup failed", "query", q, "error", err)
		return []domain.Suggestion{}, err
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}

	if s.cache != nil {
		if data, err := json.Marshal(suggestions); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, suggestCacheTTL)
		}
	}

	return suggestions, nil
}
