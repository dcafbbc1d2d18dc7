package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.Migrator().DropTable(&models.User{})
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	handler := NewHandler(services.NewAuthService(db, "test_secret"))
	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1/auth"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	r := setupAuthRouter(t)

	w := postJSON(t, r, "/api/v1/auth/register", RegisterRequest{
		Email:       "first@test.local",
		Password:    "password123",
		DisplayName: "First",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "first@test.local", data["email"])
	// First account is promoted to admin.
	assert.Equal(t, "admin", data["role"])

	// Duplicate email is a conflict.
	w = postJSON(t, r, "/api/v1/auth/register", RegisterRequest{
		Email:    "first@test.local",
		Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Short password fails validation.
	w = postJSON(t, r, "/api/v1/auth/register", RegisterRequest{
		Email:    "short@test.local",
		Password: "tiny",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Admin role cannot be requested at sign-up.
	w = postJSON(t, r, "/api/v1/auth/register", map[string]string{
		"email":    "admin-wannabe@test.local",
		"password": "password123",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r := setupAuthRouter(t)

	w := postJSON(t, r, "/api/v1/auth/register", RegisterRequest{
		Email:    "login@test.local",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/v1/auth/login", LoginRequest{
		Email:    "login@test.local",
		Password: "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	w = postJSON(t, r, "/api/v1/auth/login", LoginRequest{
		Email:    "login@test.local",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
