package stores

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DuaShare/models"
)

// MemoryStore keeps everything in process memory. It is safe for concurrent
// use; every mutation happens under the write lock so counter increments are
// never lost.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int
	nextUserID int
	prayers    map[int]models.Prayer
	users      map[int]models.User
	now        func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:     1,
		nextUserID: 1,
		prayers:    make(map[int]models.Prayer),
		users:      make(map[int]models.User),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) CreatePrayer(_ context.Context, input models.PrayerCreate) (*models.Prayer, error) {
	content, author, category := normalizeCreate(input)

	s.mu.Lock()
	defer s.mu.Unlock()

	prayer := models.Prayer{
		ID:           s.nextID,
		Content:      content,
		Author:       author,
		Category:     category,
		Created_At:   s.now(),
		Is_Published: true,
	}
	s.nextID++
	s.prayers[prayer.ID] = prayer

	return clonePrayer(prayer), nil
}

func (s *MemoryStore) GetPrayer(_ context.Context, id int) (*models.Prayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prayer, ok := s.prayers[id]
	if !ok {
		return nil, nil
	}
	return clonePrayer(prayer), nil
}

func (s *MemoryStore) UpdatePrayer(_ context.Context, id int, update models.PrayerUpdate) (*models.Prayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prayer, ok := s.prayers[id]
	if !ok {
		return nil, nil
	}
	if update.Is_Published != nil {
		prayer.Is_Published = *update.Is_Published
		s.prayers[id] = prayer
	}
	return clonePrayer(prayer), nil
}

func (s *MemoryStore) DeletePrayer(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prayers[id]; !ok {
		return false, nil
	}
	delete(s.prayers, id)
	return true, nil
}

func (s *MemoryStore) IncrementAmeenCount(_ context.Context, id int) (bool, error) {
	return s.increment(id, func(p *models.Prayer) { p.Ameen_Count++ }), nil
}

func (s *MemoryStore) IncrementViewCount(_ context.Context, id int) (bool, error) {
	return s.increment(id, func(p *models.Prayer) { p.View_Count++ }), nil
}

func (s *MemoryStore) increment(id int, bump func(p *models.Prayer)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prayer, ok := s.prayers[id]
	if !ok {
		return false
	}
	bump(&prayer)
	s.prayers[id] = prayer
	return true
}

func (s *MemoryStore) ListPrayers(_ context.Context, filter models.PrayerFilter, page, limit int) ([]models.Prayer, error) {
	matched := s.matching(filter)

	start := offset(page, limit)
	if start >= len(matched) {
		return []models.Prayer{}, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	result := make([]models.Prayer, 0, end-start)
	for _, p := range matched[start:end] {
		result = append(result, *clonePrayer(p))
	}
	return result, nil
}

func (s *MemoryStore) CountPrayers(_ context.Context, filter models.PrayerFilter) (int, error) {
	return len(s.matching(filter)), nil
}

// matching returns the filtered prayers ordered newest first, ties broken by
// the later insertion first.
func (s *MemoryStore) matching(filter models.PrayerFilter) []models.Prayer {
	s.mu.RLock()
	matched := make([]models.Prayer, 0, len(s.prayers))
	for _, p := range s.prayers {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Created_At.Equal(matched[j].Created_At) {
			return matched[i].Created_At.After(matched[j].Created_At)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched
}

func matchesFilter(p models.Prayer, filter models.PrayerFilter) bool {
	if !filter.IncludeUnpublished && !p.Is_Published {
		return false
	}
	if filter.Category != "" && (p.Category == nil || *p.Category != filter.Category) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(p.Content), needle) &&
			!strings.Contains(strings.ToLower(p.Author), needle) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) GetUser(_ context.Context, id int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, input models.UserCreate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == input.Username {
			return nil, fmt.Errorf("username %q already exists", input.Username)
		}
	}

	user := models.User{ID: s.nextUserID, Username: input.Username, Password: input.Password}
	s.nextUserID++
	s.users[user.ID] = user
	return &user, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func clonePrayer(p models.Prayer) *models.Prayer {
	if p.Category != nil {
		c := *p.Category
		p.Category = &c
	}
	return &p
}
