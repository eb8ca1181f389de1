// Package postgres answers directory queries from the user-service database
// (users + contacts tables).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

const (
	contactTypeEmail = "email"
	contactTypePhone = "phone"
)

// PostgresDirectory runs one SQL lookup per filter.
type PostgresDirectory struct {
	db          *sql.DB
	log         zerolog.Logger
	countryCode string
	matchDigits int
}

// NewPostgresDirectory builds the directory. matchDigits is the number of
// trailing phone digits compared by tel/match filters.
func NewPostgresDirectory(db *sql.DB, countryCode string, matchDigits int, log zerolog.Logger) *PostgresDirectory {
	return &PostgresDirectory{db: db, log: log, countryCode: countryCode, matchDigits: matchDigits}
}

const userColumns = "u.id, u.name, u.tenant_id"

const (
	selectByID = "SELECT " + userColumns + " FROM users u WHERE u.id = $1"

	selectByContact = `
		SELECT DISTINCT ` + userColumns + `
		FROM users u
		JOIN contacts c ON u.id = c.user_id
		WHERE c.contact_type = $1 AND c.contact_value = $2
		ORDER BY u.id`

	selectByContactSuffix = `
		SELECT DISTINCT ` + userColumns + `
		FROM users u
		JOIN contacts c ON u.id = c.user_id
		WHERE c.contact_type = $1 AND c.contact_value LIKE '%' || $2
		ORDER BY u.id`

	selectContacts = `SELECT contact_type, contact_value, is_primary FROM contacts WHERE user_id = $1 ORDER BY is_primary DESC, id`
)

func (r *PostgresDirectory) Query(ctx context.Context, filter directory.Filter) ([]*directory.Record, error) {
	if err := directory.Validate(filter); err != nil {
		return nil, err
	}

	query, args, ok := r.buildQuery(filter)
	if !ok {
		return nil, nil
	}

	users, err := r.fetchUsers(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Str("filter", filter.String()).Msg("Directory query failed")
		return nil, fmt.Errorf("%w: %v", directory.ErrBackend, err)
	}

	for _, u := range users {
		if err := r.fetchContactsForRecord(ctx, u); err != nil {
			r.log.Error().Err(err).Str("user_id", u.ID).Msg("Contact rows could not be loaded")
			return nil, fmt.Errorf("%w: %v", directory.ErrBackend, err)
		}
	}
	return users, nil
}

// buildQuery picks the SQL for a validated filter. ok is false when a phone
// number carries no digits and nothing could match.
func (r *PostgresDirectory) buildQuery(filter directory.Filter) (query string, args []any, ok bool) {
	switch filter.Field {
	case directory.FieldID:
		return selectByID, []any{filter.Value}, true
	case directory.FieldEmail:
		return selectByContact, []any{contactTypeEmail, filter.Value}, true
	case directory.FieldTel:
		normalized := directory.NormalizePhone(filter.Value, r.countryCode)
		if normalized == "" {
			return "", nil, false
		}
		// Numbers shorter than the match window are compared whole.
		if filter.Operator == directory.OpEquals || len(normalized) < r.matchDigits {
			return selectByContact, []any{contactTypePhone, normalized}, true
		}
		return selectByContactSuffix, []any{contactTypePhone, directory.PhoneSuffix(normalized, r.matchDigits)}, true
	}
	return "", nil, false
}

func (r *PostgresDirectory) fetchUsers(ctx context.Context, query string, args ...any) ([]*directory.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*directory.Record
	for rows.Next() {
		var rec directory.Record
		var name, tenantID sql.NullString
		if err := rows.Scan(&rec.ID, &name, &tenantID); err != nil {
			return nil, err
		}
		if name.Valid && name.String != "" {
			rec.Name = []directory.Entry{{Value: name.String, Primary: true}}
		}
		rec.TenantID = tenantID.String
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *PostgresDirectory) fetchContactsForRecord(ctx context.Context, rec *directory.Record) error {
	rows, err := r.db.QueryContext(ctx, selectContacts, rec.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var contactType, value string
		var primary bool
		if err := rows.Scan(&contactType, &value, &primary); err != nil {
			return err
		}
		appendContact(rec, contactType, value, primary)
	}
	return rows.Err()
}

func appendContact(rec *directory.Record, contactType, value string, primary bool) {
	entry := directory.Entry{Type: contactType, Value: value, Primary: primary}
	switch contactType {
	case contactTypeEmail:
		rec.Email = append(rec.Email, entry)
	case contactTypePhone:
		rec.Tel = append(rec.Tel, entry)
	}
}
