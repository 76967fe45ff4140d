package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/DuaShare/models"
	"github.com/DuaShare/supabase"
)

// counterRPC is the Postgres function installed by the
// 000003_prayer_counter_fn migration. It performs the +1 server side.
const counterRPC = "increment_prayer_counter"

// SupabaseStore talks to a hosted Supabase project over PostgREST.
type SupabaseStore struct {
	client *supabase.Client
}

var _ Store = (*SupabaseStore)(nil)

func NewSupabaseStore(client *supabase.Client) *SupabaseStore {
	return &SupabaseStore{client: client}
}

func (s *SupabaseStore) CreatePrayer(ctx context.Context, input models.PrayerCreate) (*models.Prayer, error) {
	content, author, category := normalizeCreate(input)

	resp, err := s.client.From(prayerTable).ExecuteInsert(ctx, map[string]any{
		"content":      content,
		"author":       author,
		"category":     category,
		"is_published": true,
		"view_count":   0,
		"ameen_count":  0,
	})
	prayers, err := decodePrayers(resp, err, "create prayer")
	if err != nil {
		return nil, err
	}
	if len(prayers) == 0 {
		return nil, models.NewPersistenceError("create prayer", fmt.Errorf("no row returned"))
	}
	return &prayers[0], nil
}

func (s *SupabaseStore) GetPrayer(ctx context.Context, id int) (*models.Prayer, error) {
	resp, err := s.client.From(prayerTable).Select("*").Eq("id", id).Execute(ctx)
	return firstPrayer(decodePrayers(resp, err, "get prayer"))
}

func (s *SupabaseStore) UpdatePrayer(ctx context.Context, id int, update models.PrayerUpdate) (*models.Prayer, error) {
	if update.IsEmpty() {
		return s.GetPrayer(ctx, id)
	}

	body := map[string]any{}
	if update.Is_Published != nil {
		body["is_published"] = *update.Is_Published
	}

	resp, err := s.client.From(prayerTable).Eq("id", id).ExecuteUpdate(ctx, body)
	return firstPrayer(decodePrayers(resp, err, "update prayer"))
}

func (s *SupabaseStore) DeletePrayer(ctx context.Context, id int) (bool, error) {
	resp, err := s.client.From(prayerTable).Eq("id", id).ExecuteDelete(ctx)
	prayers, err := decodePrayers(resp, err, "delete prayer")
	if err != nil {
		return false, err
	}
	return len(prayers) > 0, nil
}

func (s *SupabaseStore) IncrementAmeenCount(ctx context.Context, id int) (bool, error) {
	return s.increment(ctx, id, "ameen_count")
}

func (s *SupabaseStore) IncrementViewCount(ctx context.Context, id int) (bool, error) {
	return s.increment(ctx, id, "view_count")
}

func (s *SupabaseStore) increment(ctx context.Context, id int, counter string) (bool, error) {
	op := "increment " + counter
	resp, err := s.client.RPC(ctx, counterRPC, map[string]any{
		"prayer_id":    id,
		"counter_name": counter,
	})
	if err != nil {
		return false, models.NewPersistenceError(op, err)
	}
	if err := resp.Error(); err != nil {
		return false, models.NewPersistenceError(op, err)
	}

	var updated bool
	if err := resp.JSON(&updated); err != nil {
		return false, models.NewPersistenceError(op, err)
	}
	return updated, nil
}

func (s *SupabaseStore) ListPrayers(ctx context.Context, filter models.PrayerFilter, page, limit int) ([]models.Prayer, error) {
	q := applyFilter(s.client.From(prayerTable).Select("*"), filter).
		Order("created_at", false).
		Order("id", false).
		Limit(limit).
		Offset(offset(page, limit))

	resp, err := q.Execute(ctx)
	return decodePrayers(resp, err, "list prayers")
}

func (s *SupabaseStore) CountPrayers(ctx context.Context, filter models.PrayerFilter) (int, error) {
	q := applyFilter(s.client.From(prayerTable).Select("id"), filter).
		Limit(1).
		Count("exact")

	resp, err := q.Execute(ctx)
	if err != nil {
		return 0, models.NewPersistenceError("count prayers", err)
	}
	if err := resp.Error(); err != nil {
		return 0, models.NewPersistenceError("count prayers", err)
	}
	total, err := resp.TotalCount()
	if err != nil {
		return 0, models.NewPersistenceError("count prayers", err)
	}
	return total, nil
}

func applyFilter(q *supabase.QueryBuilder, filter models.PrayerFilter) *supabase.QueryBuilder {
	if !filter.IncludeUnpublished {
		q = q.Eq("is_published", true)
	}
	if filter.Category != "" {
		q = q.Eq("category", filter.Category)
	}
	if filter.Search != "" {
		pattern := quotePostgrest("*" + filter.Search + "*")
		q = q.Or("content.ilike."+pattern, "author.ilike."+pattern)
	}
	return q
}

var postgrestQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quotePostgrest wraps a value in double quotes so commas and parentheses in
// a search term do not break the or=(...) grammar.
func quotePostgrest(v string) string {
	return `"` + postgrestQuoter.Replace(v) + `"`
}

func (s *SupabaseStore) GetUser(ctx context.Context, id int) (*models.User, error) {
	resp, err := s.client.From(userTable).Select("*").Eq("id", id).Execute(ctx)
	return firstUser(resp, err, "get user")
}

func (s *SupabaseStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	resp, err := s.client.From(userTable).Select("*").Eq("username", username).Execute(ctx)
	return firstUser(resp, err, "get user")
}

func (s *SupabaseStore) CreateUser(ctx context.Context, input models.UserCreate) (*models.User, error) {
	resp, err := s.client.From(userTable).ExecuteInsert(ctx, map[string]any{
		"username": input.Username,
		"password": input.Password,
	})
	user, err := firstUser(resp, err, "create user")
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewPersistenceError("create user", fmt.Errorf("no row returned"))
	}
	return user, nil
}

func (s *SupabaseStore) Close() error {
	return nil
}

// supabaseUser mirrors the users row; the password column is not exposed in
// models.User JSON so it is decoded separately.
type supabaseUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func firstUser(resp *supabase.Response, err error, op string) (*models.User, error) {
	if err != nil {
		return nil, models.NewPersistenceError(op, err)
	}
	if err := resp.Error(); err != nil {
		return nil, models.NewPersistenceError(op, err)
	}

	var rows []supabaseUser
	if err := resp.JSON(&rows); err != nil {
		return nil, models.NewPersistenceError(op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &models.User{ID: rows[0].ID, Username: rows[0].Username, Password: rows[0].Password}, nil
}

func decodePrayers(resp *supabase.Response, err error, op string) ([]models.Prayer, error) {
	if err != nil {
		return nil, models.NewPersistenceError(op, err)
	}
	if err := resp.Error(); err != nil {
		return nil, models.NewPersistenceError(op, err)
	}

	prayers := []models.Prayer{}
	if err := resp.JSON(&prayers); err != nil {
		return nil, models.NewPersistenceError(op, err)
	}
	// Hosted tables created before the NOT NULL default may hold null authors.
	for i := range prayers {
		if prayers[i].Author == "" {
			prayers[i].Author = models.DefaultAuthor
		}
	}
	return prayers, nil
}

func firstPrayer(prayers []models.Prayer, err error) (*models.Prayer, error) {
	if err != nil {
		return nil, err
	}
	if len(prayers) == 0 {
		return nil, nil
	}
	return &prayers[0], nil
}
