package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/DuaShare/middlewares"
	"github.com/DuaShare/services"
	"github.com/DuaShare/stores"
)

const testAdminPassword = "correct-horse-battery"

// TestServer is the full router over an in-memory store, authenticated with
// the password authenticator.
type TestServer struct {
	Router   *gin.Engine
	Store    *stores.MemoryStore
	Sessions *services.SessionManager
}

func SetupTestServer(t *testing.T) *TestServer {
	t.Helper()
	return SetupTestServerWithRegistry(t, services.NewMemorySessionRegistry())
}

// SetupTestServerWithRegistry is SetupTestServer over a caller-supplied
// session registry.
func SetupTestServerWithRegistry(t *testing.T, registry services.SessionRegistry) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := stores.NewMemoryStore()
	feed := services.NewPrayerFeed(store)
	sessions := services.NewSessionManager("test-secret-key", time.Hour, registry)
	auth := services.NewPasswordAuthenticator(testAdminPassword, "")

	router := gin.New()
	RegisterRoutes(router, Routes{
		Prayers:  NewPrayerController(store, feed, services.NewNotificationTrigger()),
		Admin:    NewAdminController(auth, sessions, store, feed, false),
		Sessions: sessions,
		Limiter:  middlewares.NewRateLimiter(),
	})

	return &TestServer{Router: router, Store: store, Sessions: sessions}
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// Do sends a request through the router. body is JSON encoded unless it is
// already a string.
func (s *TestServer) Do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

// Login signs in as admin and returns the session cookie.
func (s *TestServer) Login(t *testing.T) *http.Cookie {
	t.Helper()

	w := s.Do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": testAdminPassword})
	require.Equal(t, http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middlewares.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

// DecodeJSON unmarshals the recorder body into v.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
