package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/propline/internal/export"
	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/ingest/prizepicks"
	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/normalize"
	"github.com/fortuna/propline/internal/store"
	"github.com/fortuna/propline/internal/validate"
	"go.uber.org/zap"
)

// PropSink receives every exported slate. A failing sink is logged and does
// not fail the run.
type PropSink interface {
	Name() string
	PublishProps(ctx context.Context, day store.Date, records []store.PropRecord) error
}

// RunOptions parametrizes one scrape.
type RunOptions struct {
	OutputDir string
	UseMock   bool
	Strict    bool
}

// RunResult describes a completed scrape.
type RunResult struct {
	Date     store.Date               `json:"date"`
	Strategy string                   `json:"strategy"`
	Raw      int                      `json:"raw"`
	Records  []store.PropRecord       `json:"records"`
	Report   validate.Report          `json:"report"`
	Failures []ingest.StrategyFailure `json:"-"`
	Path     string                   `json:"path,omitempty"`
}

// PropsService runs the props pipeline: resolve, normalize, validate, export.
type PropsService struct {
	client  *prizepicks.Client
	fetcher prizepicks.PageFetcher
	sinks   []PropSink
	now     func() time.Time
	log     *logger.Logger
}

// NewPropsService creates a props service. fetcher may be nil, in which case
// pages are fetched over plain HTTP by client.
func NewPropsService(client *prizepicks.Client, fetcher prizepicks.PageFetcher, log *logger.Logger, sinks ...PropSink) *PropsService {
	return &PropsService{
		client:  client,
		fetcher: fetcher,
		sinks:   sinks,
		now:     time.Now,
		log:     log.Named("props"),
	}
}

// WithClock overrides the clock that decides the run date.
func (s *PropsService) WithClock(now func() time.Time) *PropsService {
	s.now = now
	return s
}

// Collect resolves and validates today's props without writing anything.
// In strict mode an empty result is returned together with
// validate.ErrNoValidRecords.
func (s *PropsService) Collect(ctx context.Context, useMock, strict bool) (*RunResult, error) {
	day := store.Today(s.now())
	log := s.log.With(zap.String("date", day.String()))

	strategies := prizepicks.Strategies(s.client, s.fetcher, useMock, log)
	resolver := ingest.NewResolver[store.Date, ingest.RawProp](log, strategies...)
	log.Info("collecting props", zap.Strings("strategies", resolver.Strategies()))

	resolution, err := resolver.Resolve(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("resolving props: %w", err)
	}

	records, report := validate.Props(normalize.Props(resolution.Records), day, log)
	res := &RunResult{
		Date:     day,
		Strategy: resolution.Strategy,
		Raw:      len(resolution.Records),
		Records:  records,
		Report:   report,
		Failures: resolution.Failures,
	}
	if err := report.Check(strict); err != nil {
		return res, err
	}
	return res, nil
}

// Run collects props, writes nba_props_<date>.csv under opts.OutputDir and
// publishes to the configured sinks. A file is written even when every
// record was dropped, unless opts.Strict is set.
func (s *PropsService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	res, err := s.Collect(ctx, opts.UseMock, opts.Strict)
	if err != nil {
		return res, err
	}

	path, err := export.WriteProps(opts.OutputDir, res.Date, res.Records)
	if err != nil {
		return res, fmt.Errorf("exporting props: %w", err)
	}
	res.Path = path
	s.log.Info("props exported",
		zap.String("path", path),
		zap.Int("rows", len(res.Records)),
		zap.String("strategy", res.Strategy),
	)

	for _, sink := range s.sinks {
		if err := sink.PublishProps(ctx, res.Date, res.Records); err != nil {
			s.log.Warn("sink failed", zap.String("sink", sink.Name()), zap.Error(err))
			continue
		}
		s.log.Debug("sink published", zap.String("sink", sink.Name()), zap.Int("rows", len(res.Records)))
	}

	return res, nil
}
