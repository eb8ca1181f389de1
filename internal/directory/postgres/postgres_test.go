package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

func TestAppendContact(t *testing.T) {
	rec := &directory.Record{ID: "u-1"}
	appendContact(rec, "email", "a@b.com", true)
	appendContact(rec, "phone", "905551234567", false)
	appendContact(rec, "fax", "123", false)

	require.Len(t, rec.Email, 1)
	require.Len(t, rec.Tel, 1)
	assert.Equal(t, directory.Entry{Type: "email", Value: "a@b.com", Primary: true}, rec.Email[0])
	assert.Equal(t, "905551234567", rec.Tel[0].Value)
}

func TestQueryRejectsInvalidFilterWithoutTouchingDatabase(t *testing.T) {
	dir := NewPostgresDirectory(nil, "90", 7, zerolog.Nop())

	_, err := dir.Query(context.Background(), directory.Filter{Field: directory.FieldID, Operator: directory.OpMatch, Value: "x"})
	assert.ErrorIs(t, err, directory.ErrUnsupportedFilter)
}

func TestQueryWithUnusablePhoneReturnsEmpty(t *testing.T) {
	dir := NewPostgresDirectory(nil, "90", 7, zerolog.Nop())

	got, err := dir.Query(context.Background(), directory.ByIdentity("not-a-number"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildQuery(t *testing.T) {
	dir := NewPostgresDirectory(nil, "90", 7, zerolog.Nop())

	cases := []struct {
		name   string
		filter directory.Filter
		query  string
		args   []any
	}{
		{"id", directory.ByID("u-1"), selectByID, []any{"u-1"}},
		{"email", directory.ByIdentity("a@b.com"), selectByContact, []any{"email", "a@b.com"}},
		{"phone matches trailing digits", directory.ByIdentity("+90 555 123 45 67"), selectByContactSuffix, []any{"phone", "1234567"}},
		{"trunk prefix is normalized first", directory.ByIdentity("0555 123 45 67"), selectByContactSuffix, []any{"phone", "1234567"}},
		{"short phone is compared whole", directory.ByIdentity("12 345"), selectByContact, []any{"phone", "12345"}},
		{"equals phone is compared whole", directory.Filter{Field: directory.FieldTel, Operator: directory.OpEquals, Value: "0555 123 45 67"}, selectByContact, []any{"phone", "905551234567"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query, args, ok := dir.buildQuery(tc.filter)
			require.True(t, ok)
			assert.Equal(t, tc.query, query)
			assert.Equal(t, tc.args, args)
		})
	}

	_, _, ok := dir.buildQuery(directory.ByIdentity("no digits"))
	assert.False(t, ok)
}

func newMockDirectory(t *testing.T) (*PostgresDirectory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresDirectory(db, "90", 7, zerolog.Nop()), mock
}

func TestQueryLoadsContacts(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(selectByContactSuffix).
		WithArgs("phone", "1234567").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tenant_id"}).
			AddRow("u-1", "Ayşe Yılmaz", "t-1").
			AddRow("u-2", nil, nil))
	mock.ExpectQuery(selectContacts).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"contact_type", "contact_value", "is_primary"}).
			AddRow("email", "ayse@example.com", true).
			AddRow("phone", "905551234567", false))
	mock.ExpectQuery(selectContacts).
		WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows([]string{"contact_type", "contact_value", "is_primary"}).
			AddRow("phone", "905321234567", true))

	got, err := dir.Query(context.Background(), directory.ByIdentity("0555 123 45 67"))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "t-1", got[0].TenantID)
	assert.Equal(t, []directory.Entry{{Value: "Ayşe Yılmaz", Primary: true}}, got[0].Name)
	assert.Equal(t, []directory.Entry{{Type: "email", Value: "ayse@example.com", Primary: true}}, got[0].Email)
	assert.Equal(t, []directory.Entry{{Type: "phone", Value: "905551234567"}}, got[0].Tel)

	assert.Empty(t, got[1].Name)
	assert.Empty(t, got[1].Email)
	assert.Len(t, got[1].Tel, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByIDMissIsEmpty(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(selectByID).
		WithArgs("u-404").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tenant_id"}))

	got, err := dir.Query(context.Background(), directory.ByID("u-404"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryWrapsDatabaseErrors(t *testing.T) {
	t.Run("user lookup", func(t *testing.T) {
		dir, mock := newMockDirectory(t)
		mock.ExpectQuery(selectByContact).
			WithArgs("email", "a@b.com").
			WillReturnError(errors.New("connection reset by peer"))

		_, err := dir.Query(context.Background(), directory.ByIdentity("a@b.com"))
		assert.ErrorIs(t, err, directory.ErrBackend)
		assert.Contains(t, err.Error(), "connection reset by peer")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("contact lookup", func(t *testing.T) {
		dir, mock := newMockDirectory(t)
		mock.ExpectQuery(selectByID).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tenant_id"}).AddRow("u-1", "A", "t-1"))
		mock.ExpectQuery(selectContacts).
			WithArgs("u-1").
			WillReturnError(errors.New("canceling statement due to statement timeout"))

		_, err := dir.Query(context.Background(), directory.ByID("u-1"))
		assert.ErrorIs(t, err, directory.ErrBackend)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
