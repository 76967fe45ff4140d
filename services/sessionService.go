package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/DuaShare/models"
)

const adminRole = "admin"

// AdminSession is the server-side record behind an issued admin token.
type AdminSession struct {
	ID        string
	Subject   string
	ExpiresAt time.Time
}

// SessionRegistry remembers which session ids are live. Revoking removes the
// id so the token stops working before it expires.
type SessionRegistry interface {
	Save(ctx context.Context, session AdminSession) error
	Active(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}

// SessionManager issues and checks admin capability tokens: HS256 JWTs whose
// jti must also be present in the registry.
type SessionManager struct {
	secret   []byte
	ttl      time.Duration
	registry SessionRegistry
	now      func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, registry SessionRegistry) *SessionManager {
	return &SessionManager{
		secret:   []byte(secret),
		ttl:      ttl,
		registry: registry,
		now:      time.Now,
	}
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session for subject and returns the signed token.
func (m *SessionManager) Issue(ctx context.Context, subject string) (string, *AdminSession, error) {
	now := m.now()
	session := AdminSession{
		ID:        uuid.NewString(),
		Subject:   subject,
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":  session.ID,
		"sub":  subject,
		"role": adminRole,
		"iat":  now.Unix(),
		"exp":  session.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	if err := m.registry.Save(ctx, session); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	return signed, &session, nil
}

// Validate returns the live session for token, or models.ErrUnauthorized
// when the token is malformed, expired, or revoked.
func (m *SessionManager) Validate(ctx context.Context, tokenString string) (*AdminSession, error) {
	if tokenString == "" {
		return nil, models.ErrUnauthorized
	}

	session, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	active, err := m.registry.Active(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !active {
		return nil, models.ErrUnauthorized
	}
	return session, nil
}

// Revoke ends the session behind token. Unknown or invalid tokens are a
// no-op so logout always succeeds.
func (m *SessionManager) Revoke(ctx context.Context, tokenString string) error {
	session, err := m.parse(tokenString)
	if err != nil {
		return nil
	}
	return m.registry.Revoke(ctx, session.ID)
}

func (m *SessionManager) parse(tokenString string) (*AdminSession, error) {
	// Expiry is checked below against m.now so the clock can be controlled.
	parser := jwt.Parser{SkipClaimsValidation: true}
	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthorized
	}

	exp, ok := claims["exp"].(float64)
	if !ok || float64(m.now().Unix()) >= exp {
		return nil, models.ErrUnauthorized
	}
	if claims["role"] != adminRole {
		return nil, models.ErrUnauthorized
	}
	id, _ := claims["jti"].(string)
	if id == "" {
		return nil, models.ErrUnauthorized
	}
	subject, _ := claims["sub"].(string)

	return &AdminSession{
		ID:        id,
		Subject:   subject,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// MemorySessionRegistry keeps sessions in process. Expired entries are pruned
// on every save.
type MemorySessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessionRegistry() *MemorySessionRegistry {
	return &MemorySessionRegistry{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (r *MemorySessionRegistry) Save(_ context.Context, session AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, expires := range r.sessions {
		if !now.Before(expires) {
			delete(r.sessions, id)
		}
	}
	r.sessions[session.ID] = session.ExpiresAt
	return nil
}

func (r *MemorySessionRegistry) Active(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expires, ok := r.sessions[id]
	if !ok {
		return false, nil
	}
	if !r.now().Before(expires) {
		delete(r.sessions, id)
		return false, nil
	}
	return true, nil
}

func (r *MemorySessionRegistry) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// RedisSessionRegistry stores one key per session with a TTL matching the
// session expiry, so sessions survive restarts and are shared across
// replicas.
type RedisSessionRegistry struct {
	client *redis.Client
	prefix string
}

func NewRedisSessionRegistry(client *redis.Client) *RedisSessionRegistry {
	return &RedisSessionRegistry{client: client, prefix: "duashare:session:"}
}

func (r *RedisSessionRegistry) Save(ctx context.Context, session AdminSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	return r.client.Set(ctx, r.prefix+session.ID, session.Subject, ttl).Err()
}

func (r *RedisSessionRegistry) Active(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisSessionRegistry) Revoke(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.prefix+id).Err()
}
