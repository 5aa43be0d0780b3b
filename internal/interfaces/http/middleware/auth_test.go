package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"wallet-core.backend/internal/domain/entities"
	"wallet-core.backend/internal/infrastructure/repositories"
	"wallet-core.backend/internal/usecases"
	"wallet-core.backend/pkg/crypto"
	"wallet-core.backend/pkg/jwt"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *jwt.JWTService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		key_hash TEXT NOT NULL UNIQUE,
		permissions TEXT NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT 0,
		expires_at DATETIME NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		name TEXT,
		password_hash TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`).Error)

	jwtService := jwt.NewJWTService("test-secret", time.Hour, time.Hour)
	apiKeyUsecase := usecases.NewApiKeyUsecase(
		repositories.NewApiKeyRepository(db),
		repositories.NewUserRepository(db),
		repositories.NewUnitOfWork(db),
	)

	r := gin.New()
	r.Use(AuthMiddleware(jwtService, apiKeyUsecase))
	r.GET("/whoami", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		method, _ := GetAuthMethod(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "method": method})
	})
	r.POST("/transfer", RequirePermission(entities.PermissionTransfer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/keys", RequireBearerAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, jwtService, db
}

func seedApiKey(t *testing.T, db *gorm.DB, plain string, perms string, revoked bool, expiresAt time.Time) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO api_keys(id,user_id,name,key_hash,permissions,revoked,expires_at,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		uuid.New().String(), userID.String(), "test", crypto.SHA256Hex([]byte(plain)), perms, revoked, expiresAt, time.Now(), time.Now(),
	).Error)
	return userID
}

func TestAuthMiddleware_NoCredentials(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidBearer(t *testing.T) {
	r, jwtService, _ := newAuthTestRouter(t)

	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(userID, "user@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), AuthMethodJWT)
}

func TestAuthMiddleware_MalformedBearer(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidApiKey(t *testing.T) {
	r, _, db := newAuthTestRouter(t)

	plain := "sk_live_valid1"
	userID := seedApiKey(t, db, plain, `["READ"]`, false, time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("x-api-key", plain)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), AuthMethodApiKey)
}

func TestAuthMiddleware_ApiKeyPathIsExclusive(t *testing.T) {
	r, jwtService, _ := newAuthTestRouter(t)

	// A valid bearer token cannot rescue a request carrying a bad API key.
	pair, err := jwtService.GenerateTokenPair(uuid.New(), "user@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("x-api-key", "sk_live_bogus")
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RevokedApiKey(t *testing.T) {
	r, _, db := newAuthTestRouter(t)

	plain := "sk_live_revoked1"
	seedApiKey(t, db, plain, `["READ"]`, true, time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("x-api-key", plain)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddleware_ExpiredApiKey(t *testing.T) {
	r, _, db := newAuthTestRouter(t)

	plain := "sk_live_expired1"
	seedApiKey(t, db, plain, `["READ"]`, false, time.Now().Add(-time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("x-api-key", plain)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermission_ApiKeyMissingPermission(t *testing.T) {
	r, _, db := newAuthTestRouter(t)

	plain := "sk_live_readonly1"
	seedApiKey(t, db, plain, `["READ"]`, false, time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transfer", nil)
	req.Header.Set("x-api-key", plain)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermission_ApiKeyWithPermission(t *testing.T) {
	r, _, db := newAuthTestRouter(t)

	plain := "sk_live_mover1"
	seedApiKey(t, db, plain, `["TRANSFER"]`, false, time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transfer", nil)
	req.Header.Set("x-api-key", plain)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission_BearerAlwaysPasses(t *testing.T) {
	r, jwtService, _ := newAuthTestRouter(t)

	pair, err := jwtService.GenerateTokenPair(uuid.New(), "user@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transfer", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireBearerAuth_RejectsApiKey(t *testing.T) {
	r, _, db := newAuthTestRouter(t)

	plain := "sk_live_keysmith1"
	seedApiKey(t, db, plain, `["READ","DEPOSIT","TRANSFER"]`, false, time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/keys", nil)
	req.Header.Set("x-api-key", plain)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
