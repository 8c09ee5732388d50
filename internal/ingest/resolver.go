package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fortuna/propline/internal/logger"
	"go.uber.org/zap"
)

// ErrAllStrategiesFailed is returned when no strategy, mock included, produced data.
var ErrAllStrategiesFailed = errors.New("all source strategies failed")

// ErrNoRecords is what a strategy returns when it reached its source but found
// nothing usable there.
var ErrNoRecords = errors.New("no records found")

// Strategy is one way of obtaining raw records of type T for a query Q.
type Strategy[Q, T any] interface {
	Name() string
	Fetch(ctx context.Context, query Q) ([]T, error)
}

// Resolver tries its strategies in order and returns the first usable result.
// Each strategy is attempted exactly once.
type Resolver[Q, T any] struct {
	strategies  []Strategy[Q, T]
	acceptEmpty bool
	log         *logger.Logger
}

// Resolution is the outcome of a successful Resolve.
type Resolution[T any] struct {
	Strategy string
	Records  []T
	Failures []StrategyFailure
}

// StrategyFailure records why a strategy was skipped over.
type StrategyFailure struct {
	Strategy string
	Err      error
}

func (f StrategyFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Strategy, f.Err)
}

// NewResolver builds a resolver over strategies in priority order.
func NewResolver[Q, T any](log *logger.Logger, strategies ...Strategy[Q, T]) *Resolver[Q, T] {
	return &Resolver[Q, T]{
		strategies: strategies,
		log:        log.Named("resolver"),
	}
}

// AcceptEmpty makes a strategy that returns no error but zero records count as
// a success. By default an empty result falls through to the next strategy.
func (r *Resolver[Q, T]) AcceptEmpty() *Resolver[Q, T] {
	r.acceptEmpty = true
	return r
}

// Strategies returns the names of the configured strategies in order.
func (r *Resolver[Q, T]) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve runs the strategy chain for query.
func (r *Resolver[Q, T]) Resolve(ctx context.Context, query Q) (*Resolution[T], error) {
	var failures []StrategyFailure

	for _, strategy := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.log.Debug("trying strategy", zap.String("strategy", strategy.Name()))
		records, err := strategy.Fetch(ctx, query)
		if err == nil && len(records) == 0 && !r.acceptEmpty {
			err = ErrNoRecords
		}
		if err != nil {
			r.log.Warn("strategy failed, falling through",
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
			failures = append(failures, StrategyFailure{Strategy: strategy.Name(), Err: err})
			continue
		}

		r.log.Info("strategy succeeded",
			zap.String("strategy", strategy.Name()),
			zap.Int("records", len(records)),
		)
		if records == nil {
			records = []T{}
		}
		return &Resolution[T]{
			Strategy: strategy.Name(),
			Records:  records,
			Failures: failures,
		}, nil
	}

	msgs := make([]string, 0, len(failures))
	for _, f := range failures {
		msgs = append(msgs, f.Error())
	}
	return nil, fmt.Errorf("%w: %s", ErrAllStrategiesFailed, strings.Join(msgs, "; "))
}
