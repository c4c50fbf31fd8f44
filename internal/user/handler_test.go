package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classfit/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserRouter(service Service, userID *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewHandler(service)
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.POST("/auth/refresh", handler.Refresh)

	authed := router.Group("")
	authed.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set("user_id", *userID)
		}
		c.Next()
	})
	authed.GET("/me", handler.GetMe)
	authed.PUT("/me/profile", handler.UpdateProfile)

	router.GET("/trainers", handler.ListTrainers)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterHandler(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("EmailExists", mock.Anything, "marta@example.com").Return(false, nil)
	mockRepo.On("Create", mock.Anything, "Marta", "Gil", "marta@example.com", mock.AnythingOfType("string"), RoleMember).
		Return(&User{ID: 1, Name: "Marta", LastName: "Gil", Email: "marta@example.com", Role: RoleMember, CreatedAt: time.Now()}, nil)

	router := newUserRouter(NewService(mockRepo, testSecret), nil)
	w := postJSON(t, router, http.MethodPost, "/auth/register", RegisterRequest{
		Name: "Marta", LastName: "Gil", Email: "marta@example.com", Password: "supersecret",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "marta@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	mockRepo.AssertExpectations(t)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("EmailExists", mock.Anything, "marta@example.com").Return(true, nil)

	router := newUserRouter(NewService(mockRepo, testSecret), nil)
	w := postJSON(t, router, http.MethodPost, "/auth/register", RegisterRequest{
		Name: "Marta", LastName: "Gil", Email: "marta@example.com", Password: "supersecret",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	router := newUserRouter(NewService(new(MockRepository), testSecret), nil)

	// Password below the minimum never reaches the service.
	w := postJSON(t, router, http.MethodPost, "/auth/register", RegisterRequest{
		Name: "Marta", LastName: "Gil", Email: "marta@example.com", Password: "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct-password")
	require.NoError(t, err)

	mockRepo := new(MockRepository)
	mockRepo.On("FindByEmail", mock.Anything, "marta@example.com").
		Return(&User{ID: 1, Email: "marta@example.com", PasswordHash: hash, Role: RoleMember}, nil)

	router := newUserRouter(NewService(mockRepo, testSecret), nil)
	w := postJSON(t, router, http.MethodPost, "/auth/login", LoginRequest{
		Email: "marta@example.com", Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestGetMe(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindByID", mock.Anything, 9).
		Return(&User{ID: 9, Name: "Marta", Email: "marta@example.com", Role: RoleMember}, nil)

	userID := 9
	router := newUserRouter(NewService(mockRepo, testSecret), &userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var u User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, 9, u.ID)
}

func TestGetMe_Unauthenticated(t *testing.T) {
	router := newUserRouter(NewService(new(MockRepository), testSecret), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfileHandler(t *testing.T) {
	goal := "cardio"
	level := "beginner"

	mockRepo := new(MockRepository)
	mockRepo.On("UpdateProfile", mock.Anything, 9, &goal, &level).
		Return(&User{ID: 9, Goal: &goal, PreferredLevel: &level}, nil)

	userID := 9
	router := newUserRouter(NewService(mockRepo, testSecret), &userID)
	w := postJSON(t, router, http.MethodPut, "/me/profile", UpdateProfileRequest{Goal: &goal, PreferredLevel: &level})

	require.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestUpdateProfileHandler_RejectsUnknownGoal(t *testing.T) {
	bad := "bodybuilding"
	userID := 9
	router := newUserRouter(NewService(new(MockRepository), testSecret), &userID)

	w := postJSON(t, router, http.MethodPut, "/me/profile", UpdateProfileRequest{Goal: &bad})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTrainersHandler(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("ListTrainers", mock.Anything).
		Return([]User{{ID: 3, Name: "Carla", Role: RoleTrainer}}, nil)

	router := newUserRouter(NewService(mockRepo, testSecret), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trainers", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var trainers []User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trainers))
	require.Len(t, trainers, 1)
	assert.Equal(t, RoleTrainer, trainers[0].Role)
}
