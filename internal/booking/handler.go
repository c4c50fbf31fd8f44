package booking

import (
	"net/http"
	"strconv"

	"classfit/internal/api"
	"classfit/internal/auth"

	"github.com/gin-gonic/gin"
)

const rejectionFallback = "The booking could not be completed"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Book a class session
// @Description  Invokes the atomic booking procedure for the current user.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Success      201 {object} booking.ProcedureResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /sessions/{sessionID}/book [post]
func (h *Handler) BookSession(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.service.Book(ctx, userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to process booking"})
		return
	}

	if !result.Success {
		c.JSON(rejectionStatus(result.Code), api.ErrorResponse{Error: rejectionMessage(result)})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary      Cancel a booking
// @Description  Cancels the current user's active booking for the session.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} booking.ProcedureResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /sessions/{sessionID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.service.Cancel(ctx, userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to process cancellation"})
		return
	}

	if !result.Success {
		c.JSON(rejectionStatus(result.Code), api.ErrorResponse{Error: rejectionMessage(result)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} booking.BookingWithDetails
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	ctx := c.Request.Context()
	bookings, err := h.service.MyBookings(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func rejectionStatus(code string) int {
	switch code {
	case CodeSessionNotFound, CodeNotBooked:
		return http.StatusNotFound
	case CodeSessionFull, CodeAlreadyBooked:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// rejectionMessage relays the procedure's message verbatim when present.
func rejectionMessage(result *ProcedureResult) string {
	if result.Message != nil && *result.Message != "" {
		return *result.Message
	}
	return rejectionFallback
}
