package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tutorhub/tutorhub-api/internal/models"
)

func performWithClaims(t *testing.T, claims *models.JWTClaims, allowed ...string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRBACMissingClaims(t *testing.T) {
	code := performWithClaims(t, nil, "teacher")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRBACRoleMatch(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Roles: []string{"teacher"}}
	assert.Equal(t, http.StatusOK, performWithClaims(t, claims, "teacher"))
	assert.Equal(t, http.StatusForbidden, performWithClaims(t, claims, "student"))
}

func TestRBACDualRoleUser(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Roles: []string{"student", "teacher"}}
	assert.Equal(t, http.StatusOK, performWithClaims(t, claims, "teacher"))
	assert.Equal(t, http.StatusOK, performWithClaims(t, claims, "student"))
}

func TestRBACAdminFlag(t *testing.T) {
	admin := &models.JWTClaims{UserID: "a1", Roles: []string{}, IsAdmin: true}
	assert.Equal(t, http.StatusOK, performWithClaims(t, admin, "teacher", RoleAdmin))
	// The admin flag only matches when the route allows it.
	assert.Equal(t, http.StatusForbidden, performWithClaims(t, admin, "teacher"))
}
