package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect-digitals-backend/internal/domains/user"
	"connect-digitals-backend/pkg/jwt"
)

// mockLoader implements UserLoader with an overridable func field.
type mockLoader struct {
	FindByIDFunc func(ctx context.Context, id uuid.UUID) (*user.User, error)
}

func (m *mockLoader) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func newAuthRouter(jwtMgr *jwt.Manager, loader UserLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Authenticate(jwtMgr, loader), func(c *gin.Context) {
		id, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": id.String(),
			"role":    role,
			"name":    GetUserName(c),
		})
	})
	return router
}

func activeUser(id uuid.UUID) *user.User {
	return &user.User{
		ID:       id,
		Name:     "Jane Author",
		Email:    "jane@example.com",
		Role:     user.RoleAuthor,
		IsActive: true,
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	router := newAuthRouter(jwt.NewManager("secret", time.Hour), &mockLoader{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	mgr := jwt.NewManager("secret", time.Hour)
	userID := uuid.New()

	loader := &mockLoader{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			assert.Equal(t, userID, id)
			return activeUser(userID), nil
		},
	}
	router := newAuthRouter(mgr, loader)

	token, err := mgr.GenerateToken(userID.String(), "jane@example.com", "author")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "Jane Author")
}

func TestAuthenticate_InactiveAccount(t *testing.T) {
	mgr := jwt.NewManager("secret", time.Hour)
	userID := uuid.New()

	loader := &mockLoader{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			u := activeUser(userID)
			u.IsActive = false
			return u, nil
		},
	}
	router := newAuthRouter(mgr, loader)

	token, err := mgr.GenerateToken(userID.String(), "jane@example.com", "author")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_TokenIssuedBeforePasswordChange(t *testing.T) {
	mgr := jwt.NewManager("secret", time.Hour)
	userID := uuid.New()

	loader := &mockLoader{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			u := activeUser(userID)
			changed := time.Now().Add(time.Minute)
			u.PasswordChangedAt = &changed
			return u, nil
		},
	}
	router := newAuthRouter(mgr, loader)

	token, err := mgr.GenerateToken(userID.String(), "jane@example.com", "author")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Password changed recently")
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	userID := uuid.New()
	router := newAuthRouter(jwt.NewManager("secret-a", time.Hour), &mockLoader{})

	token, err := jwt.NewManager("secret-b", time.Hour).GenerateToken(userID.String(), "e@example.com", "author")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		role           user.Role
		allowed        []user.Role
		expectedStatus int
	}{
		{"admin allowed", user.RoleAdmin, []user.Role{user.RoleAdmin}, http.StatusOK},
		{"editor allowed among staff", user.RoleEditor, []user.Role{user.RoleAdmin, user.RoleEditor}, http.StatusOK},
		{"editor denied admin-only", user.RoleEditor, []user.Role{user.RoleAdmin}, http.StatusForbidden},
		{"author denied", user.RoleAuthor, []user.Role{user.RoleAdmin, user.RoleEditor}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/admin",
				func(c *gin.Context) { c.Set("user_role", tt.role) },
				RequireRoles(tt.allowed...),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// Comment moderation lives under the admin-only group; an editor must
// not reach it.
func TestRequireRoles_EditorCannotModerateComments(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.PUT("/api/admin/comments/:id",
		func(c *gin.Context) { c.Set("user_role", user.RoleEditor) },
		RequireRoles(user.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/comments/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoles_NoIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/admin", RequireRoles(user.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
