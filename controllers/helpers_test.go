package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"detailpro-backend/config"
	"detailpro-backend/controllers"
	"detailpro-backend/models"
	"detailpro-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	token  string
}

type jsonObject = map[string]any

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	cfg := &config.Config{
		Server: config.ServerConfig{AppEnv: "test", CORSOrigins: []string{"http://localhost:3000"}},
		JWT:    config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
	}
	ctl, err := controllers.New(db, nil, zap.NewNop(), cfg.JWT, nil)
	require.NoError(t, err)

	return &testAPI{t: t, db: db, router: routes.SetupRouter(cfg, ctl, zap.NewNop())}
}

// newAuthedAPI registers an owner and keeps its token for later requests.
func newAuthedAPI(t *testing.T) *testAPI {
	api := newTestAPI(t)
	w := api.do(http.MethodPost, "/auth/register", jsonObject{
		"email":        "owner@example.com",
		"name":         "Owner",
		"password":     "password123",
		"businessName": "Shine Detailing",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	api.token = decode[jsonObject](t, w)["token"].(string)
	return api
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.doContext(context.Background(), method, path, body)
}

func (a *testAPI) doContext(ctx context.Context, method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// mustDo fails the test unless the request answers want.
func (a *testAPI) mustDo(method, path string, body any, want int) jsonObject {
	a.t.Helper()
	w := a.do(method, path, body)
	require.Equal(a.t, want, w.Code, w.Body.String())
	return decode[jsonObject](a.t, w)
}

func (a *testAPI) account(id string) models.FinancialAccount {
	a.t.Helper()
	var acc models.FinancialAccount
	require.NoError(a.t, a.db.First(&acc, "id = ?", id).Error)
	return acc
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
