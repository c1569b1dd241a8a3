package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garajhub/garajhub-bot/config"
	"github.com/garajhub/garajhub-bot/storage"
	"github.com/garajhub/garajhub-bot/workflow"
)

type noopNotifier struct{}

func (noopNotifier) StartupSubmitted(*storage.Startup, *storage.User) error { return nil }
func (noopNotifier) StartupApproved(*storage.Startup) error                 { return nil }
func (noopNotifier) StartupRejected(*storage.Startup) error                 { return nil }
func (noopNotifier) AnnounceStartup(*storage.Startup, *storage.User) error  { return nil }
func (noopNotifier) StartupCompleted(int64, *storage.Startup, string) error { return nil }
func (noopNotifier) JoinApproved(int64, *storage.Startup) error             { return nil }
func (noopNotifier) JoinRejected(int64) error                               { return nil }
func (noopNotifier) Broadcast(int64, string) error                          { return nil }

func (noopNotifier) JoinRequested(*storage.Membership, *storage.Startup, *storage.User) error {
	return nil
}

func testServer(t *testing.T) (*Server, *storage.Storage) {
	t.Helper()

	st, err := storage.New(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		AdminUser:     "admin",
		AdminPassword: "hunter22",
		HTTPPort:      "0",
	}

	notifier := noopNotifier{}
	flow := workflow.NewController(st, notifier)
	broadcaster := workflow.NewBroadcaster(st, notifier, time.Microsecond)

	server, err := NewServer(cfg, st, flow, broadcaster)
	require.NoError(t, err)
	return server, st
}

func doJSON(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, router http.Handler) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/login", `{"username":"admin","password":"hunter22"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestLogin(t *testing.T) {
	server, _ := testServer(t)
	router := server.Router()

	t.Run("valid credentials", func(t *testing.T) {
		loginToken(t, router)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/login", `{"username":"admin","password":"nope"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong username", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/login", `{"username":"root","password":"hunter22"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/login", `{}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	server, _ := testServer(t)
	router := server.Router()

	w := doJSON(t, router, http.MethodGet, "/api/statistics", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/statistics", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatistics(t *testing.T) {
	server, st := testServer(t)
	router := server.Router()
	token := loginToken(t, router)

	_, err := st.SaveUser(100, "aziz", "Aziz")
	require.NoError(t, err)
	require.NoError(t, st.CreateStartup(&storage.Startup{Name: "X", OwnerID: 100, Status: storage.StartupPending}))

	w := doJSON(t, router, http.MethodGet, "/api/statistics", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var stats storage.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.PendingStartups)
}

func TestApproveStartup(t *testing.T) {
	server, st := testServer(t)
	router := server.Router()
	token := loginToken(t, router)

	startup := &storage.Startup{Name: "X", OwnerID: 100, Status: storage.StartupPending}
	require.NoError(t, st.CreateStartup(startup))

	w := doJSON(t, router, http.MethodPost, "/api/startups/1/approve", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	got, err := st.GetStartup(startup.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StartupActive, got.Status)

	// Second decision on the same startup conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/startups/1/approve", "", token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/startups/1/reject", "", token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/startups/notanid/approve", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListStartups(t *testing.T) {
	server, st := testServer(t)
	router := server.Router()
	token := loginToken(t, router)

	require.NoError(t, st.CreateStartup(&storage.Startup{Name: "P", OwnerID: 1, Status: storage.StartupPending}))
	require.NoError(t, st.CreateStartup(&storage.Startup{Name: "A", OwnerID: 1, Status: storage.StartupActive}))

	w := doJSON(t, router, http.MethodGet, "/api/startups?status=pending", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Startups []storage.Startup `json:"startups"`
		Total    int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Startups, 1)
	assert.Equal(t, "P", resp.Startups[0].Name)

	w = doJSON(t, router, http.MethodGet, "/api/startups?status=bogus", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStartup_NotFound(t *testing.T) {
	server, _ := testServer(t)
	router := server.Router()
	token := loginToken(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/startups/404", "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBroadcast(t *testing.T) {
	server, _ := testServer(t)
	router := server.Router()
	token := loginToken(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/broadcast", `{"message":"hello"}`, token)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/broadcast", `{}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	server, _ := testServer(t)

	w := doJSON(t, server.Router(), http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
