package stores

import (
	"context"
	"database/sql"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/DuaShare/models"
)

const (
	prayerTable = "prayers"
	userTable   = "users"
)

var prayerColumns = []interface{}{
	"id", "content", "author", "category", "created_at", "is_published", "view_count", "ameen_count",
}

// PostgresStore persists prayers and users through goqu.
type PostgresStore struct {
	db  *goqu.Database
	raw *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open connection. raw may be nil when the caller
// owns the connection lifecycle, as tests do.
func NewPostgresStore(db *goqu.Database, raw *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, raw: raw}
}

func (s *PostgresStore) CreatePrayer(ctx context.Context, input models.PrayerCreate) (*models.Prayer, error) {
	content, author, category := normalizeCreate(input)

	var categoryValue interface{}
	if category != nil {
		categoryValue = *category
	}

	insert := s.db.Insert(prayerTable).
		Rows(goqu.Record{
			"content":      content,
			"author":       author,
			"category":     categoryValue,
			"is_published": true,
			"view_count":   0,
			"ameen_count":  0,
		}).
		Returning(prayerColumns...)

	var prayer models.Prayer
	if _, err := insert.Executor().ScanStructContext(ctx, &prayer); err != nil {
		return nil, models.NewPersistenceError("create prayer", err)
	}
	return &prayer, nil
}

func (s *PostgresStore) GetPrayer(ctx context.Context, id int) (*models.Prayer, error) {
	var prayer models.Prayer
	found, err := s.db.From(prayerTable).
		Select(prayerColumns...).
		Where(goqu.C("id").Eq(id)).
		ScanStructContext(ctx, &prayer)
	if err != nil {
		return nil, models.NewPersistenceError("get prayer", err)
	}
	if !found {
		return nil, nil
	}
	return &prayer, nil
}

func (s *PostgresStore) UpdatePrayer(ctx context.Context, id int, update models.PrayerUpdate) (*models.Prayer, error) {
	if update.IsEmpty() {
		return s.GetPrayer(ctx, id)
	}

	record := goqu.Record{}
	if update.Is_Published != nil {
		record["is_published"] = *update.Is_Published
	}

	var prayer models.Prayer
	found, err := s.db.Update(prayerTable).
		Set(record).
		Where(goqu.C("id").Eq(id)).
		Returning(prayerColumns...).
		Executor().
		ScanStructContext(ctx, &prayer)
	if err != nil {
		return nil, models.NewPersistenceError("update prayer", err)
	}
	if !found {
		return nil, nil
	}
	return &prayer, nil
}

func (s *PostgresStore) DeletePrayer(ctx context.Context, id int) (bool, error) {
	result, err := s.db.Delete(prayerTable).
		Where(goqu.C("id").Eq(id)).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return false, models.NewPersistenceError("delete prayer", err)
	}
	return affected(result, "delete prayer")
}

func (s *PostgresStore) IncrementAmeenCount(ctx context.Context, id int) (bool, error) {
	return s.increment(ctx, id, "ameen_count")
}

func (s *PostgresStore) IncrementViewCount(ctx context.Context, id int) (bool, error) {
	return s.increment(ctx, id, "view_count")
}

// increment bumps a counter server side so concurrent requests never lose an
// update.
func (s *PostgresStore) increment(ctx context.Context, id int, column string) (bool, error) {
	result, err := s.db.Update(prayerTable).
		Set(goqu.Record{column: goqu.L(column + " + 1")}).
		Where(goqu.C("id").Eq(id)).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return false, models.NewPersistenceError("increment "+column, err)
	}
	return affected(result, "increment "+column)
}

func (s *PostgresStore) ListPrayers(ctx context.Context, filter models.PrayerFilter, page, limit int) ([]models.Prayer, error) {
	prayers := []models.Prayer{}
	err := s.db.From(prayerTable).
		Select(prayerColumns...).
		Where(filterExpressions(filter)...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset(page, limit))).
		ScanStructsContext(ctx, &prayers)
	if err != nil {
		return nil, models.NewPersistenceError("list prayers", err)
	}
	return prayers, nil
}

func (s *PostgresStore) CountPrayers(ctx context.Context, filter models.PrayerFilter) (int, error) {
	count, err := s.db.From(prayerTable).
		Where(filterExpressions(filter)...).
		CountContext(ctx)
	if err != nil {
		return 0, models.NewPersistenceError("count prayers", err)
	}
	return int(count), nil
}

func filterExpressions(filter models.PrayerFilter) []exp.Expression {
	var where []exp.Expression
	if !filter.IncludeUnpublished {
		where = append(where, goqu.C("is_published").IsTrue())
	}
	if filter.Category != "" {
		where = append(where, goqu.C("category").Eq(filter.Category))
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		where = append(where, goqu.Or(
			goqu.C("content").ILike(pattern),
			goqu.C("author").ILike(pattern),
		))
	}
	return where
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes a search term match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *PostgresStore) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.findUser(ctx, goqu.C("id").Eq(id))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, goqu.C("username").Eq(username))
}

func (s *PostgresStore) findUser(ctx context.Context, where exp.Expression) (*models.User, error) {
	var user models.User
	found, err := s.db.From(userTable).
		Select("id", "username", "password").
		Where(where).
		ScanStructContext(ctx, &user)
	if err != nil {
		return nil, models.NewPersistenceError("get user", err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, input models.UserCreate) (*models.User, error) {
	var user models.User
	_, err := s.db.Insert(userTable).
		Rows(goqu.Record{"username": input.Username, "password": input.Password}).
		Returning("id", "username", "password").
		Executor().
		ScanStructContext(ctx, &user)
	if err != nil {
		return nil, models.NewPersistenceError("create user", err)
	}
	return &user, nil
}

func (s *PostgresStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}

func affected(result sql.Result, op string) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, models.NewPersistenceError(op, err)
	}
	return n > 0, nil
}
