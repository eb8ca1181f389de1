// Package memory is an in-process directory used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

const defaultPhoneMatchDigits = 7

// InMemory holds records keyed by identifier.
type InMemory struct {
	mu          sync.RWMutex
	records     map[string]*directory.Record
	countryCode string
	matchDigits int
}

type Option func(*InMemory)

// WithPhoneMatching sets the country code used for trunk prefixes and the
// number of trailing digits compared by tel/match queries.
func WithPhoneMatching(countryCode string, digits int) Option {
	return func(m *InMemory) {
		m.countryCode = countryCode
		if digits > 0 {
			m.matchDigits = digits
		}
	}
}

func New(opts ...Option) *InMemory {
	m := &InMemory{
		records:     make(map[string]*directory.Record),
		matchDigits: defaultPhoneMatchDigits,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Put adds or replaces records.
func (m *InMemory) Put(records ...*directory.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = r
	}
}

func (m *InMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *InMemory) Query(ctx context.Context, filter directory.Filter) ([]*directory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := directory.Validate(filter); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if filter.Field == directory.FieldID {
		if r, ok := m.records[filter.Value]; ok {
			return []*directory.Record{r}, nil
		}
		return nil, nil
	}

	var out []*directory.Record
	for _, r := range m.records {
		if m.matches(r, filter) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *InMemory) matches(r *directory.Record, f directory.Filter) bool {
	switch f.Field {
	case directory.FieldEmail:
		for _, e := range r.Email {
			if e.Value == f.Value {
				return true
			}
		}
	case directory.FieldTel:
		for _, e := range r.Tel {
			if f.Operator == directory.OpEquals && e.Value == f.Value {
				return true
			}
			if f.Operator == directory.OpMatch && directory.PhonesMatch(e.Value, f.Value, m.countryCode, m.matchDigits) {
				return true
			}
		}
	}
	return false
}
