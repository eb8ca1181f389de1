package resolver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

type aggregationState int

const (
	stateCollecting aggregationState = iota
	stateFinalized
)

// queryOutcome is the settlement of one directory query.
type queryOutcome struct {
	filter  directory.Filter
	records []*directory.Record
	err     error
}

// pendingAggregation merges the outcomes of one fan-out. It is owned by the
// goroutine that runs the resolution and is never shared.
type pendingAggregation struct {
	state       aggregationState
	outstanding int
	seen        map[string]struct{}
	ids         []string
	records     []*directory.Record
	errs        []error
}

func newPendingAggregation(outstanding int) *pendingAggregation {
	p := &pendingAggregation{
		outstanding: outstanding,
		seen:        make(map[string]struct{}),
	}
	if outstanding == 0 {
		p.state = stateFinalized
	}
	return p
}

// settle folds one outcome in. It reports true exactly once: for the outcome
// that brings the outstanding count to zero. Outcomes arriving after that are
// ignored.
func (p *pendingAggregation) settle(o queryOutcome) bool {
	if p.state == stateFinalized {
		return false
	}
	if o.err != nil {
		p.errs = append(p.errs, &QueryError{Filter: o.filter, Err: o.err})
	} else {
		p.merge(o.records)
	}
	p.outstanding--
	if p.outstanding > 0 {
		return false
	}
	p.state = stateFinalized
	return true
}

// merge keeps the first record seen for every identifier.
func (p *pendingAggregation) merge(records []*directory.Record) {
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if _, dup := p.seen[rec.ID]; dup {
			continue
		}
		p.seen[rec.ID] = struct{}{}
		p.ids = append(p.ids, rec.ID)
		p.records = append(p.records, rec)
	}
}

func (p *pendingAggregation) result() (*Result, error) {
	if p.state != stateFinalized {
		return nil, fmt.Errorf("aggregation still waiting on %d queries", p.outstanding)
	}
	if len(p.errs) > 0 {
		return nil, &AggregateQueryError{Errors: p.errs}
	}
	if len(p.records) == 0 || len(p.ids) == 0 {
		return nil, ErrNotFound
	}
	return &Result{IDs: p.ids, Records: p.records}, nil
}

// resolveIdentities issues one query per distinct identity filter, waits for
// all of them and merges the outcomes. A failing query never cancels the
// others.
func (r *Resolver) resolveIdentities(ctx context.Context, identities []string) (*Result, error) {
	filters := identityFilters(identities)
	if len(filters) == 0 {
		return nil, fmt.Errorf("%w: no usable identities", ErrInvalidInput)
	}

	outcomes := make(chan queryOutcome, len(filters))
	var g errgroup.Group
	if r.maxConcurrent > 0 {
		g.SetLimit(r.maxConcurrent)
	}
	for _, f := range filters {
		g.Go(func() error {
			records, err := r.query(ctx, f)
			outcomes <- queryOutcome{filter: f, records: records, err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)

	agg := newPendingAggregation(len(filters))
	for o := range outcomes {
		agg.settle(o)
	}
	return agg.result()
}
