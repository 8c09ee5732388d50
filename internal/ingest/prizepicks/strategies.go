package prizepicks

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/store"
	"go.uber.org/zap"
)

// Strategy names as they appear in logs and run summaries.
const (
	SourceAPI  = "api"
	SourceHTML = "html"
	SourceMock = "mock"
)

// APIStrategy queries the projection endpoints in order and keeps the first
// one that yields records.
type APIStrategy struct {
	client *Client
	log    *logger.Logger
}

func NewAPIStrategy(client *Client, log *logger.Logger) *APIStrategy {
	return &APIStrategy{client: client, log: log.Named("api-strategy")}
}

func (s *APIStrategy) Name() string { return SourceAPI }

func (s *APIStrategy) Fetch(ctx context.Context, day store.Date) ([]ingest.RawProp, error) {
	var errs []error
	for _, url := range s.client.EndpointURLs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := s.client.GetJSON(ctx, url)
		if err != nil {
			s.log.Warn("endpoint failed", zap.String("url", url), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		props, err := ParseAPIResponse(body, day)
		if err != nil {
			s.log.Warn("endpoint returned unusable body", zap.String("url", url), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
			continue
		}
		if len(props) == 0 {
			s.log.Debug("endpoint returned no projections", zap.String("url", url))
			continue
		}

		s.log.Info("endpoint returned projections", zap.String("url", url), zap.Int("count", len(props)))
		return props, nil
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, ingest.ErrNoRecords
}

// HTMLStrategy scrapes the board page.
type HTMLStrategy struct {
	fetcher PageFetcher
	pageURL string
	log     *logger.Logger
}

func NewHTMLStrategy(fetcher PageFetcher, pageURL string, log *logger.Logger) *HTMLStrategy {
	return &HTMLStrategy{fetcher: fetcher, pageURL: pageURL, log: log.Named("html-strategy")}
}

func (s *HTMLStrategy) Name() string { return SourceHTML }

func (s *HTMLStrategy) Fetch(ctx context.Context, day store.Date) ([]ingest.RawProp, error) {
	page, err := s.fetcher.FetchPage(ctx, s.pageURL)
	if err != nil {
		return nil, err
	}
	props, err := ParseHTML(page, day)
	if err != nil {
		return nil, err
	}
	s.log.Debug("parsed page", zap.String("url", s.pageURL), zap.Int("count", len(props)))
	return props, nil
}

// MockStrategy serves the fixed slate without touching the network.
type MockStrategy struct{}

func (MockStrategy) Name() string { return SourceMock }

func (MockStrategy) Fetch(_ context.Context, day store.Date) ([]ingest.RawProp, error) {
	return MockProps(day), nil
}

// Strategies returns the chain for a run: mock only when useMock is set,
// otherwise API, HTML and mock in that order.
func Strategies(client *Client, fetcher PageFetcher, useMock bool, log *logger.Logger) []ingest.Strategy[store.Date, ingest.RawProp] {
	if useMock {
		return []ingest.Strategy[store.Date, ingest.RawProp]{MockStrategy{}}
	}
	if fetcher == nil {
		fetcher = client
	}
	return []ingest.Strategy[store.Date, ingest.RawProp]{
		NewAPIStrategy(client, log),
		NewHTMLStrategy(fetcher, client.BaseURL(), log),
		MockStrategy{},
	}
}
