package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/config"
	"github.com/vhducng/certprep/internal/errs"
)

// trustedStudyGuideDomain constrains certification-name searches to the
// official documentation site.
const trustedStudyGuideDomain = "learn.microsoft.com"

// relatedSearchCap bounds the merged related-content result set.
const relatedSearchCap = 10

// interQueryDelay spaces successive topic queries to respect the provider's
// rate limits.
const interQueryDelay = 200 * time.Millisecond

// SearchResult is one ranked hit from the search provider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchService is the optional keyword-search capability. When no provider
// key is configured, every call reports errs.ErrSearchUnavailable so callers
// can branch on "not configured" vs "tried and found nothing".
type SearchService interface {
	Enabled() bool
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	// FindStudyGuide searches the trusted documentation domain for a study
	// guide matching the certification name.
	FindStudyGuide(ctx context.Context, certificationName string) ([]SearchResult, error)
	// SearchRelated fans one query per topic out to the provider, merges the
	// hits deduplicated by URL and capped at relatedSearchCap. Individual
	// query failures never abort the batch; whatever accumulated is returned.
	SearchRelated(ctx context.Context, topics []string, perTopic int) ([]SearchResult, error)
}

type serperSearchService struct {
	cfg    *config.Config
	client *http.Client
	delay  time.Duration
}

func NewSearchService(cfg *config.Config) SearchService {
	if !cfg.Search.Enabled() {
		log.Warn().Msg("SERPER_API_KEY is not set, the search path is disabled")
	}
	return &serperSearchService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		delay:  interQueryDelay,
	}
}

func (s *serperSearchService) Enabled() bool {
	return s.cfg.Search.Enabled()
}

// serperResponse mirrors the relevant part of the Serper.dev reply.
type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (s *serperSearchService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if !s.Enabled() {
		return nil, errs.ErrSearchUnavailable
	}
	if limit <= 0 {
		limit = 10
	}

	payload, err := json.Marshal(map[string]interface{}{"q": query, "num": limit})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding query: %v", errs.ErrSearchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Search.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSearchFailed, err)
	}
	req.Header.Set("X-API-KEY", s.cfg.Search.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifySearchTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", errs.ErrSearchFailed, resp.StatusCode)
	}

	var decoded serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding provider response: %v", errs.ErrSearchFailed, err)
	}

	results := make([]SearchResult, 0, len(decoded.Organic))
	for _, hit := range decoded.Organic {
		results = append(results, SearchResult{Title: hit.Title, URL: hit.Link, Snippet: hit.Snippet})
	}
	if len(results) > limit {
		results = results[:limit]
	}
	log.Debug().Str("query", query).Int("results", len(results)).Msg("Search completed")
	return results, nil
}

func (s *serperSearchService) FindStudyGuide(ctx context.Context, certificationName string) ([]SearchResult, error) {
	query := fmt.Sprintf("%s certification study guide site:%s", certificationName, trustedStudyGuideDomain)
	return s.Search(ctx, query, 5)
}

func (s *serperSearchService) SearchRelated(ctx context.Context, topics []string, perTopic int) ([]SearchResult, error) {
	if !s.Enabled() {
		return nil, errs.ErrSearchUnavailable
	}

	var merged []SearchResult
	seen := make(map[string]bool)

	for i, topic := range topics {
		if i > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return merged, nil
			}
		}

		hits, err := s.Search(ctx, topic, perTopic)
		if err != nil {
			// One bad topic query must not sink the batch.
			log.Warn().Err(err).Str("topic", topic).Msg("Related-content query failed, keeping accumulated results")
			continue
		}
		for _, hit := range hits {
			if hit.URL == "" || seen[hit.URL] {
				continue
			}
			seen[hit.URL] = true
			merged = append(merged, hit)
			if len(merged) >= relatedSearchCap {
				return merged, nil
			}
		}
	}
	return merged, nil
}

func classifySearchTransportError(err error) error {
	classified := classifyTransportError(err, "search provider")
	if errors.Is(classified, errs.ErrTimeout) {
		return classified
	}
	return fmt.Errorf("%w: %v", errs.ErrSearchFailed, err)
}
