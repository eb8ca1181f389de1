package resolver

import (
	"strings"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

// IdentityQuery names a contact by canonical id, by identity strings (email
// addresses or phone numbers), or both. With both, the id is tried first and
// the identities are the fallback.
type IdentityQuery struct {
	ContactID  string
	Identities []string
}

// ByContactID builds a query for a canonical id with optional fallback identities.
func ByContactID(id string, fallback ...string) *IdentityQuery {
	return &IdentityQuery{ContactID: id, Identities: fallback}
}

// ByIdentities builds an identity-only query.
func ByIdentities(identities ...string) *IdentityQuery {
	return &IdentityQuery{Identities: identities}
}

func (q *IdentityQuery) hasIdentities() bool {
	for _, id := range q.Identities {
		if strings.TrimSpace(id) != "" {
			return true
		}
	}
	return false
}

func (q *IdentityQuery) empty() bool {
	return strings.TrimSpace(q.ContactID) == "" && !q.hasIdentities()
}

// Result holds the records a query resolved to. IDs and Records are unique
// by record identifier; their order carries no meaning.
type Result struct {
	IDs     []string            `json:"ids"`
	Records []*directory.Record `json:"records"`
}

// First returns the first record, or nil.
func (r *Result) First() *directory.Record {
	if r == nil || len(r.Records) == 0 {
		return nil
	}
	return r.Records[0]
}

// identityFilters classifies identities into directory filters, dropping
// blanks and duplicates.
func identityFilters(identities []string) []directory.Filter {
	seen := make(map[directory.Filter]struct{}, len(identities))
	filters := make([]directory.Filter, 0, len(identities))
	for _, identity := range identities {
		identity = strings.TrimSpace(identity)
		if identity == "" {
			continue
		}
		f := directory.ByIdentity(identity)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		filters = append(filters, f)
	}
	return filters
}
