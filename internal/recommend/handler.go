package recommend

import (
	"net/http"

	"classfit/internal/api"
	"classfit/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Recommended classes
// @Description  Ranks classes for the current user from implicit signals; falls back to popularity when none exist.
// @Tags         recommendations
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} recommend.Response
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /recommendations [get]
func (h *Handler) Recommendations(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	ctx := c.Request.Context()
	response, err := h.service.Recommend(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to build recommendations"})
		return
	}

	c.JSON(http.StatusOK, response)
}
