package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"classfit/internal/class"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Recommend(ctx context.Context, userID int) (*Response, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Response), args.Error(1)
}

func newRecommendRouter(service Service, userID *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set("user_id", *userID)
		}
		c.Next()
	})
	router.GET("/recommendations", NewHandler(service).Recommendations)
	return router
}

func TestRecommendationsHandler(t *testing.T) {
	kind := "mobility"
	mockService := new(MockService)
	mockService.On("Recommend", mock.Anything, 9).Return(&Response{
		Items: []Recommendation{
			{Class: class.GymClass{ID: 1, Title: "Yoga Flow"}, Score: 21},
		},
		PreferredKind: &kind,
	}, nil)

	userID := 9
	router := newRecommendRouter(mockService, &userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recommendations", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Yoga Flow", resp.Items[0].Class.Title)
	assert.False(t, resp.FallbackToPopular)
	mockService.AssertExpectations(t)
}

func TestRecommendationsHandler_Unauthenticated(t *testing.T) {
	router := newRecommendRouter(new(MockService), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recommendations", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecommendationsHandler_ServiceError(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Recommend", mock.Anything, 9).Return(nil, errors.New("boom"))

	userID := 9
	router := newRecommendRouter(mockService, &userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recommendations", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
