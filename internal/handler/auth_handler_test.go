package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/tutorhub-api/internal/middleware"
	"github.com/tutorhub/tutorhub-api/internal/models"
	"github.com/tutorhub/tutorhub-api/internal/service"
)

type userRepoStub struct {
	users    map[string]*models.User
	profiles map[string]*models.Profile
}

func (m *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *userRepoStub) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.users[username]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *userRepoStub) Create(ctx context.Context, user *models.User, profile *models.Profile) error {
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	if m.profiles == nil {
		m.profiles = make(map[string]*models.Profile)
	}
	m.users[user.Username] = user
	if profile != nil {
		profile.UserID = user.ID
		m.profiles[user.ID] = profile
	}
	return nil
}

func (m *userRepoStub) FindProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if profile, ok := m.profiles[userID]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authSvc := service.NewAuthService(&userRepoStub{}, validator.New(), zap.NewNop(), service.AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "test",
	})
	authHandler := NewAuthHandler(authSvc)

	r := gin.New()
	r.POST("/auth/signup", authHandler.Signup)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	return r, authSvc
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func doJSON(r *gin.Engine, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestSignupEndpointIssuesToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w, env := doJSON(r, http.MethodPost, "/auth/signup", models.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "longenough",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var res models.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "alice", res.User.Username)
}

func TestSignupEndpointValidationErrorShape(t *testing.T) {
	r, _ := newAuthRouter(t)

	w, env := doJSON(r, http.MethodPost, "/auth/signup", models.SignupRequest{
		Username: "kid", Email: "kid@example.com", Password: "longenough", DOB: "2015-01-01",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "parent_email")
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	r, _ := newAuthRouter(t)

	w, env := doJSON(r, http.MethodPost, "/auth/login", models.LoginRequest{
		Username: "ghost", Password: "whatever",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestMeEndpointRequiresToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w, _ := doJSON(r, http.MethodGet, "/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(r, http.MethodGet, "/me", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeEndpointRoundTrip(t *testing.T) {
	r, _ := newAuthRouter(t)

	_, env := doJSON(r, http.MethodPost, "/auth/signup", models.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "longenough",
	}, "")
	var signup models.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &signup))

	w, env := doJSON(r, http.MethodGet, "/me", nil, signup.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	var me models.MeResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice", me.User.Username)
	assert.Equal(t, "alice@example.com", me.Email)
}
