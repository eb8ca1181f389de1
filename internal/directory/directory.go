// Package directory defines the single-criterion query contract every contact
// directory backend implements.
package directory

import (
	"context"
	"fmt"
	"strings"
)

// Field is the record attribute a Filter targets.
type Field string

const (
	FieldID    Field = "id"
	FieldEmail Field = "email"
	FieldTel   Field = "tel"
)

// Operator is the comparison a Filter applies.
type Operator string

const (
	// OpEquals is an exact comparison.
	OpEquals Operator = "equals"
	// OpMatch is a fuzzy comparison; phone numbers are formatted inconsistently.
	OpMatch Operator = "match"
)

// Filter is a one-field query. Backends reject anything else.
type Filter struct {
	Field    Field
	Operator Operator
	Value    string
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %q", f.Field, f.Operator, f.Value)
}

// ByID builds an exact identifier filter.
func ByID(id string) Filter {
	return Filter{Field: FieldID, Operator: OpEquals, Value: id}
}

// ByIdentity classifies an identity string: anything holding an "@" is an
// email matched exactly, everything else is a phone number matched fuzzily.
func ByIdentity(identity string) Filter {
	if strings.Contains(identity, "@") {
		return Filter{Field: FieldEmail, Operator: OpEquals, Value: identity}
	}
	return Filter{Field: FieldTel, Operator: OpMatch, Value: identity}
}

// Entry is one typed value of a multi-valued field.
type Entry struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Value   string `json:"value" yaml:"value"`
	Primary bool   `json:"primary,omitempty" yaml:"primary,omitempty"`
}

// Record is a directory entry. Callers treat records as read-only.
type Record struct {
	ID       string  `json:"id" yaml:"id"`
	TenantID string  `json:"tenant_id,omitempty" yaml:"tenant_id,omitempty"`
	Name     []Entry `json:"name,omitempty" yaml:"name,omitempty"`
	Email    []Entry `json:"email,omitempty" yaml:"email,omitempty"`
	Tel      []Entry `json:"tel,omitempty" yaml:"tel,omitempty"`
}

// Client answers single-field queries. Every call settles exactly once,
// returning zero or more records or an error. Concurrent calls may complete
// in any order.
type Client interface {
	Query(ctx context.Context, filter Filter) ([]*Record, error)
}

// Validate reports whether the filter is one a backend can execute.
func Validate(f Filter) error {
	if f.Value == "" {
		return fmt.Errorf("%w: empty value for field %s", ErrUnsupportedFilter, f.Field)
	}
	switch {
	case f.Field == FieldID && f.Operator == OpEquals,
		f.Field == FieldEmail && f.Operator == OpEquals,
		f.Field == FieldTel && (f.Operator == OpMatch || f.Operator == OpEquals):
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFilter, f)
}
