package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DuaShare/models"
)

var prayerRowColumns = []string{
	"id", "content", "author", "category", "created_at", "is_published", "view_count", "ameen_count",
}

func setupPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewPostgresStore(goqu.New("postgres", db), nil), mock
}

func TestPostgresCreatePrayer(t *testing.T) {
	store, mock := setupPostgresStore(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO "prayers" .* VALUES \(0, 'Anonymous', NULL, 'Please pray for my mother''s health', TRUE, 0\) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows(prayerRowColumns).
			AddRow(1, "Please pray for my mother's health", "Anonymous", nil, now, true, 0, 0))

	prayer, err := store.CreatePrayer(context.Background(), models.PrayerCreate{Content: "Please pray for my mother's health"})
	require.NoError(t, err)
	assert.Equal(t, 1, prayer.ID)
	assert.Equal(t, models.DefaultAuthor, prayer.Author)
	assert.Nil(t, prayer.Category)
	assert.True(t, prayer.Is_Published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetPrayer(t *testing.T) {
	tests := []struct {
		name      string
		rows      *sqlmock.Rows
		queryErr  error
		expectNil bool
		expectErr bool
	}{
		{
			name: "found",
			rows: sqlmock.NewRows(prayerRowColumns).
				AddRow(7, "Guidance in my decisions", "Omar", "guidance", time.Now(), true, 3, 2),
		},
		{
			name:      "not found",
			rows:      sqlmock.NewRows(prayerRowColumns),
			expectNil: true,
		},
		{
			name:      "database error",
			queryErr:  errors.New("connection refused"),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := setupPostgresStore(t)

			expect := mock.ExpectQuery(`SELECT .* FROM "prayers" WHERE \("id" = 7\)`)
			if tt.queryErr != nil {
				expect.WillReturnError(tt.queryErr)
			} else {
				expect.WillReturnRows(tt.rows)
			}

			prayer, err := store.GetPrayer(context.Background(), 7)

			if tt.expectErr {
				var persistenceErr *models.PersistenceError
				assert.True(t, errors.As(err, &persistenceErr))
				return
			}
			require.NoError(t, err)
			if tt.expectNil {
				assert.Nil(t, prayer)
				return
			}
			require.NotNil(t, prayer)
			assert.Equal(t, "guidance", *prayer.Category)
			assert.Equal(t, 2, prayer.Ameen_Count)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresIncrementIsAtomicSQL(t *testing.T) {
	tests := []struct {
		name     string
		call     func(s *PostgresStore) (bool, error)
		pattern  string
		affected int64
		expected bool
	}{
		{
			name:     "ameen",
			call:     func(s *PostgresStore) (bool, error) { return s.IncrementAmeenCount(context.Background(), 5) },
			pattern:  `UPDATE "prayers" SET "ameen_count"=ameen_count \+ 1 WHERE \("id" = 5\)`,
			affected: 1,
			expected: true,
		},
		{
			name:     "view",
			call:     func(s *PostgresStore) (bool, error) { return s.IncrementViewCount(context.Background(), 5) },
			pattern:  `UPDATE "prayers" SET "view_count"=view_count \+ 1 WHERE \("id" = 5\)`,
			affected: 1,
			expected: true,
		},
		{
			name:     "unknown id",
			call:     func(s *PostgresStore) (bool, error) { return s.IncrementAmeenCount(context.Background(), 5) },
			pattern:  `UPDATE "prayers" SET "ameen_count"=ameen_count \+ 1`,
			affected: 0,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := setupPostgresStore(t)
			mock.ExpectExec(tt.pattern).WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := tt.call(store)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresUpdatePrayer(t *testing.T) {
	store, mock := setupPostgresStore(t)
	hidden := false

	mock.ExpectQuery(`UPDATE "prayers" SET "is_published"=FALSE WHERE \("id" = 3\) RETURNING`).
		WillReturnRows(sqlmock.NewRows(prayerRowColumns).
			AddRow(3, "Success in my new job", "Anonymous", nil, time.Now(), false, 0, 0))

	prayer, err := store.UpdatePrayer(context.Background(), 3, models.PrayerUpdate{Is_Published: &hidden})
	require.NoError(t, err)
	require.NotNil(t, prayer)
	assert.False(t, prayer.Is_Published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdatePrayerEmptyReadsCurrent(t *testing.T) {
	store, mock := setupPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM "prayers"`).
		WillReturnRows(sqlmock.NewRows(prayerRowColumns).
			AddRow(3, "Success in my new job", "Anonymous", nil, time.Now(), true, 0, 0))

	prayer, err := store.UpdatePrayer(context.Background(), 3, models.PrayerUpdate{})
	require.NoError(t, err)
	require.NotNil(t, prayer)
	assert.True(t, prayer.Is_Published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeletePrayer(t *testing.T) {
	store, mock := setupPostgresStore(t)

	mock.ExpectExec(`DELETE FROM "prayers" WHERE \("id" = 9\)`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "prayers" WHERE \("id" = 9\)`).WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := store.DeletePrayer(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeletePrayer(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListPrayers(t *testing.T) {
	store, mock := setupPostgresStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "prayers" WHERE \(\("is_published" IS TRUE\) AND \("category" = 'health'\) AND \(\("content" ILIKE '%mother%'\) OR \("author" ILIKE '%mother%'\)\)\) ORDER BY "created_at" DESC, "id" DESC LIMIT 6 OFFSET 6`).
		WillReturnRows(sqlmock.NewRows(prayerRowColumns).
			AddRow(2, "Healing for my mother", "Anonymous", "health", now, true, 0, 1))

	rows, err := store.ListPrayers(context.Background(), models.PrayerFilter{Category: "health", Search: "mother"}, 2, 6)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListPrayersAdminHasNoPublishFilter(t *testing.T) {
	store, mock := setupPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM "prayers" ORDER BY "created_at" DESC, "id" DESC LIMIT 10`).
		WillReturnRows(sqlmock.NewRows(prayerRowColumns))

	rows, err := store.ListPrayers(context.Background(), models.PrayerFilter{IncludeUnpublished: true}, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountPrayers(t *testing.T) {
	store, mock := setupPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS "count" FROM "prayers" WHERE \("is_published" IS TRUE\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := store.CountPrayers(context.Background(), models.PrayerFilter{})
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\temp`, escapeLike(`c:\temp`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestPostgresUsers(t *testing.T) {
	store, mock := setupPostgresStore(t)

	mock.ExpectQuery(`SELECT "id", "username", "password" FROM "users" WHERE \("username" = 'admin'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}))
	mock.ExpectQuery(`INSERT INTO "users" \("password", "username"\) VALUES \('hash', 'admin'\) RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}).AddRow(1, "admin", "hash"))

	missing, err := store.GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Nil(t, missing)

	user, err := store.CreateUser(context.Background(), models.UserCreate{Username: "admin", Password: "hash"})
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
