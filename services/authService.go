package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/DuaShare/models"
	"github.com/DuaShare/stores"
	"github.com/DuaShare/supabase"
)

// Authenticator checks admin credentials. It returns the session subject on
// success and models.ErrUnauthorized when the credentials are rejected.
type Authenticator interface {
	Authenticate(ctx context.Context, login models.AdminLogin) (string, error)
}

// PasswordAuthenticator compares against one configured admin password,
// either in plaintext or as a bcrypt hash.
type PasswordAuthenticator struct {
	password     string
	passwordHash string
}

func NewPasswordAuthenticator(password, passwordHash string) *PasswordAuthenticator {
	return &PasswordAuthenticator{password: password, passwordHash: passwordHash}
}

func (a *PasswordAuthenticator) Authenticate(_ context.Context, login models.AdminLogin) (string, error) {
	if a.passwordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(login.Password)); err != nil {
			return "", models.ErrUnauthorized
		}
		return adminRole, nil
	}

	if a.password == "" || subtle.ConstantTimeCompare([]byte(a.password), []byte(login.Password)) != 1 {
		return "", models.ErrUnauthorized
	}
	return adminRole, nil
}

// UserAuthenticator checks a username and bcrypt password against the users
// table.
type UserAuthenticator struct {
	users stores.UserStore
}

func NewUserAuthenticator(users stores.UserStore) *UserAuthenticator {
	return &UserAuthenticator{users: users}
}

func (a *UserAuthenticator) Authenticate(ctx context.Context, login models.AdminLogin) (string, error) {
	if login.Username == "" {
		return "", models.ErrUnauthorized
	}

	user, err := a.users.GetUserByUsername(ctx, login.Username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", models.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(login.Password)); err != nil {
		return "", models.ErrUnauthorized
	}
	return user.Username, nil
}

// SeedAdminUser creates the admin row when it does not exist yet. An existing
// row is left untouched so a changed password is never overwritten.
func SeedAdminUser(ctx context.Context, users stores.UserStore, username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password are required to seed the users table")
	}

	existing, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := users.CreateUser(ctx, models.UserCreate{Username: username, Password: string(hash)}); err != nil {
		return err
	}
	log.WithField("username", username).Info("seeded admin user")
	return nil
}

// SupabaseAuthenticator delegates the credential check to Supabase Auth. When
// adminEmail is set only that account is accepted.
type SupabaseAuthenticator struct {
	client     *supabase.Client
	adminEmail string
}

func NewSupabaseAuthenticator(client *supabase.Client, adminEmail string) *SupabaseAuthenticator {
	return &SupabaseAuthenticator{client: client, adminEmail: adminEmail}
}

func (a *SupabaseAuthenticator) Authenticate(ctx context.Context, login models.AdminLogin) (string, error) {
	if login.Email == "" {
		return "", models.ErrUnauthorized
	}
	if a.adminEmail != "" && !strings.EqualFold(login.Email, a.adminEmail) {
		return "", models.ErrUnauthorized
	}

	resp, auth, err := a.client.SignInWithPassword(ctx, login.Email, login.Password)
	if err != nil {
		return "", fmt.Errorf("supabase sign in: %w", err)
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return "", models.ErrUnauthorized
	}
	if err := resp.Error(); err != nil {
		return "", fmt.Errorf("supabase sign in: %w", err)
	}
	if auth == nil || auth.User == nil {
		return "", models.ErrUnauthorized
	}
	return auth.User.Email, nil
}
