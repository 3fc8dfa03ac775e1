package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/config"
	"juba-homez/internal/models"
	"juba-homez/internal/services"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "password123"

// testEnv is a router over a fresh SQLite database.
type testEnv struct {
	cfg    *config.Config
	db     *gorm.DB
	router *gin.Engine
}

// setupTestDB initializes a test database in a temporary directory
func setupTestDB(t *testing.T) (*config.Config, *gorm.DB) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Server: config.ServerConfig{
			MaxBodyBytes: 1 << 20,
			CORSOrigins:  []string{"*"},
		},
		Database: config.DatabaseConfig{
			Type:   "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "juba_test.db")},
		},
		JWT: config.JWTConfig{
			Secret:    "test-secret-key-for-testing-only",
			ExpiresIn: "1h",
			Issuer:    "juba-homez-test",
		},
		Security: config.SecurityConfig{
			BcryptCost:       bcrypt.MinCost,
			MaxFailedLogins:  5,
			LockoutDuration:  "15m",
			PasswordResetTTL: "1h",
			ExposeResetToken: true,
		},
		Paths:   config.PathsConfig{Uploads: filepath.Join(dir, "uploads")},
		Uploads: config.UploadsConfig{MaxFileMB: 1, MaxFiles: 3},
	}
	require.NoError(t, os.MkdirAll(cfg.Paths.Uploads, 0755))

	db, err := models.InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return cfg, db
}

// setupTestRouter creates a test router with routes
func setupTestRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, cfg, db, nil)
	return r
}

func newTestEnv(t *testing.T) *testEnv {
	cfg, db := setupTestDB(t)
	return &testEnv{cfg: cfg, db: db, router: setupTestRouter(cfg, db)}
}

// createTestUser inserts an account directly with the given role and status
func createTestUser(t *testing.T, env *testEnv, email, role, status string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Role:         role,
		Status:       status,
		Name:         "Test " + role,
		Email:        email,
		PasswordHash: string(hash),
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

// createTestToken issues a session token for the user
func createTestToken(t *testing.T, env *testEnv, user *models.User) string {
	t.Helper()
	token, _, err := services.NewTokenService(env.cfg).Issue(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

type testEnvelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  json.RawMessage    `json:"meta"`
	Error *respond.ErrorBody `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// decodeData unmarshals the data member of a success envelope into dst
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decode(t, w)
	require.Nil(t, env.Error, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func decodeMeta(t *testing.T, w *httptest.ResponseRecorder) services.PageMeta {
	t.Helper()
	var meta services.PageMeta
	require.NoError(t, json.Unmarshal(decode(t, w).Meta, &meta))
	return meta
}

func countAudit(t *testing.T, env *testEnv, action string, entityID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).
		Where("action = ? AND entity_id = ?", action, entityID).Count(&n).Error)
	return n
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
