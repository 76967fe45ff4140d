package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DuaShare/services"
)

type failingValidator struct{}

func (failingValidator) Validate(context.Context, string) (*services.AdminSession, error) {
	return nil, errors.New("redis: connection refused")
}

// setupRouter mounts CheckAuth in front of an open and a gated route.
func setupRouter(sessions SessionValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CheckAuth(sessions))

	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"isAdmin": c.GetBool("admin")})
	})
	router.GET("/gated", CheckAdmin, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func issueToken(t *testing.T, manager *services.SessionManager) string {
	token, _, err := manager.Issue(context.Background(), "admin")
	require.NoError(t, err)
	return token
}

func TestCheckAuth(t *testing.T) {
	manager := services.NewSessionManager("test-secret-key", time.Hour, services.NewMemorySessionRegistry())
	other := services.NewSessionManager("wrong-secret-key", time.Hour, services.NewMemorySessionRegistry())

	revoked := issueToken(t, manager)
	require.NoError(t, manager.Revoke(context.Background(), revoked))

	tests := []struct {
		name          string
		setupRequest  func(req *http.Request)
		expectedAdmin bool
	}{
		{
			name:          "no credentials",
			setupRequest:  func(req *http.Request) {},
			expectedAdmin: false,
		},
		{
			name: "valid session cookie",
			setupRequest: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: issueToken(t, manager)})
			},
			expectedAdmin: true,
		},
		{
			name: "valid bearer token",
			setupRequest: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+issueToken(t, manager))
			},
			expectedAdmin: true,
		},
		{
			name: "malformed authorization header",
			setupRequest: func(req *http.Request) {
				req.Header.Set("Authorization", "Token "+issueToken(t, manager))
			},
			expectedAdmin: false,
		},
		{
			name: "revoked session",
			setupRequest: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: revoked})
			},
			expectedAdmin: false,
		},
		{
			name: "token signed with another secret",
			setupRequest: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: issueToken(t, other)})
			},
			expectedAdmin: false,
		},
		{
			name: "garbage token",
			setupRequest: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
			},
			expectedAdmin: false,
		},
	}

	router := setupRouter(manager)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			tt.setupRequest(req)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			var response map[string]bool
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedAdmin, response["isAdmin"])
		})
	}
}

func TestCheckAuthRegistryFailure(t *testing.T) {
	router := setupRouter(failingValidator{})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedBody   map[string]interface{}
	}{
		{
			name:           "open route continues as non-admin",
			path:           "/status",
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]interface{}{"isAdmin": false},
		},
		{
			name:           "gated route reports the outage",
			path:           "/gated",
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]interface{}{"error": "Failed to load session"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedBody, response)
		})
	}
}

func TestCheckAdmin(t *testing.T) {
	manager := services.NewSessionManager("test-secret-key", time.Hour, services.NewMemorySessionRegistry())
	router := setupRouter(manager)

	t.Run("rejects anonymous caller", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Unauthorized", response["error"])
	})

	t.Run("allows admin session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: issueToken(t, manager)})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSessionTokenPrefersCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	c.Request.Header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-cookie", SessionToken(c))
}
