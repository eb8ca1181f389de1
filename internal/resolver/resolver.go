// Package resolver turns a contact id or a set of identity strings into
// directory records using single-field directory queries.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
	"github.com/sentiric/sentiric-contact-resolver/internal/logger"
	"github.com/sentiric/sentiric-contact-resolver/internal/metrics"
)

const (
	strategyContactID  = "contact_id"
	strategyIdentities = "identities"
	strategyNone       = "none"
)

type Resolver struct {
	dir           directory.Client
	log           zerolog.Logger
	metrics       *metrics.Metrics
	maxConcurrent int
}

type Option func(*Resolver)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithMaxConcurrentQueries caps the directory queries one resolution keeps in
// flight. Zero means no cap.
func WithMaxConcurrentQueries(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.maxConcurrent = n
		}
	}
}

func New(dir directory.Client, log zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{dir: dir, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find resolves q. It returns ErrInvalidInput for a missing backend or an
// empty query, ErrNotFound when nothing matched, and an *AggregateQueryError
// when any directory query failed.
func (r *Resolver) Find(ctx context.Context, q *IdentityQuery) (*Result, error) {
	l := logger.ContextLogger(ctx, r.log)
	strategy := strategyOf(q)

	if r.dir == nil {
		r.observeResolution(strategy, metrics.OutcomeInvalid)
		l.Error().
			Str("event", logger.EventDirectoryMissing).
			Msg("Directory backend is not available")
		return nil, fmt.Errorf("%w: directory backend unavailable", ErrInvalidInput)
	}
	if strategy == strategyNone {
		r.observeResolution(strategy, metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: empty query", ErrInvalidInput)
	}

	res, err := r.resolve(ctx, q)
	if err != nil {
		r.observeResolution(strategy, outcomeOf(err))
		l.Info().
			Str("event", logger.EventContactLookupFail).
			Err(err).
			Dict("attributes", zerolog.Dict().
				Str("strategy", strategy).
				Str("contact_id", q.ContactID).
				Int("identities", len(q.Identities))).
			Msg("Contact could not be resolved")
		return nil, err
	}

	r.observeResolution(strategy, metrics.OutcomeSuccess)
	l.Debug().
		Str("event", logger.EventContactLookup).
		Dict("attributes", zerolog.Dict().
			Str("strategy", strategy).
			Strs("contact_ids", res.IDs)).
		Msg("Contact resolved")
	return res, nil
}

// FindFunc is the callback form of Find. Exactly one of onSuccess and onError
// runs, once; nil callbacks are skipped.
func (r *Resolver) FindFunc(ctx context.Context, q *IdentityQuery, onSuccess func(*Result), onError func(error)) {
	res, err := r.Find(ctx, q)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	if onSuccess != nil {
		onSuccess(res)
	}
}

// resolve tries the exact id first. A miss or a failed id query falls back
// to the identities when there are any.
func (r *Resolver) resolve(ctx context.Context, q *IdentityQuery) (*Result, error) {
	contactID := strings.TrimSpace(q.ContactID)
	if contactID == "" {
		return r.resolveIdentities(ctx, q.Identities)
	}

	records, err := r.query(ctx, directory.ByID(contactID))
	if err == nil && len(records) > 0 && records[0] != nil {
		rec := records[0]
		return &Result{IDs: []string{rec.ID}, Records: []*directory.Record{rec}}, nil
	}

	if !q.hasIdentities() {
		if err != nil {
			return nil, fmt.Errorf("%w: contact %q lookup failed and no fallback identities given: %v", ErrNotFound, contactID, err)
		}
		return nil, fmt.Errorf("%w: contact %q, no fallback identities given", ErrNotFound, contactID)
	}

	if r.metrics != nil {
		r.metrics.IncrementFallbacks()
	}
	l := logger.ContextLogger(ctx, r.log)
	ev := l.Debug().
		Str("event", logger.EventContactFallback)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Dict("attributes", zerolog.Dict().
		Str("contact_id", contactID).
		Int("identities", len(q.Identities))).
		Msg("Contact id missed, searching by identities")

	return r.resolveIdentities(ctx, q.Identities)
}

// query runs one directory lookup with logging and metrics around it.
func (r *Resolver) query(ctx context.Context, f directory.Filter) ([]*directory.Record, error) {
	start := time.Now()
	records, err := r.dir.Query(ctx, f)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeHit
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
		l := logger.ContextLogger(ctx, r.log)
		l.Warn().
			Str("event", logger.EventDirectoryQueryFail).
			Err(err).
			Dict("attributes", zerolog.Dict().
				Str("field", string(f.Field)).
				Str("operator", string(f.Operator)).
				Dur("elapsed", elapsed)).
			Msg("Directory query failed")
	case len(records) == 0:
		outcome = metrics.OutcomeMiss
	}
	if r.metrics != nil {
		r.metrics.ObserveDirectoryQuery(string(f.Field), outcome, elapsed)
	}
	return records, err
}

func (r *Resolver) observeResolution(strategy, outcome string) {
	if r.metrics != nil {
		r.metrics.IncrementResolution(strategy, outcome)
	}
}

// strategyOf labels how q will be resolved; strategyNone marks a query with
// nothing to look up.
func strategyOf(q *IdentityQuery) string {
	switch {
	case q == nil || q.empty():
		return strategyNone
	case strings.TrimSpace(q.ContactID) != "":
		return strategyContactID
	default:
		return strategyIdentities
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
