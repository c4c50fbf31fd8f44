package class

import (
	"errors"
	"net/http"
	"strconv"

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

// @Summary      List classes
// @Description  Active classes with next-session availability, filterable and sortable.
// @Tags         classes
// @Produce      json
// @Param        search query string false "Text search over title and description"
// @Param        level query string false "beginner|intermediate|advanced|none|all"
// @Param        trainer_id query string false "Trainer id or all"
// @Param        weekday query string false "0 (Sunday) .. 6 (Saturday) or all"
// @Param        time_band query string false "morning|afternoon|evening|all"
// @Param        duration_band query string false "short|medium|long|all"
// @Param        kind query string false "strength|cardio|mobility|all"
// @Param        only_available query bool false "Keep only available and few_left"
// @Param        sort query string false "popular|closest|least_occupied|recommended"
// @Success      200 {array} class.ClassSummary
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	var opts FilterOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	classes, err := h.service.ListClasses(ctx, opts, ParseSortMode(c.Query("sort")), auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch classes"})
		return
	}

	c.JSON(http.StatusOK, classes)
}

// @Summary      Get class by slug
// @Tags         classes
// @Produce      json
// @Param        slug path string true "Class slug"
// @Success      200 {object} class.ClassDetail
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes/{slug} [get]
func (h *Handler) GetClass(c *gin.Context) {
	ctx := c.Request.Context()
	detail, err := h.service.GetClassBySlug(ctx, c.Param("slug"), auth.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch class"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// @Summary      List upcoming sessions
// @Description  Sessions in the next two weeks with per-caller availability.
// @Tags         sessions
// @Produce      json
// @Param        search query string false "Text search over title and description"
// @Param        level query string false "beginner|intermediate|advanced|none|all"
// @Param        trainer_id query string false "Trainer id or all"
// @Param        weekday query string false "0 (Sunday) .. 6 (Saturday) or all"
// @Param        time_band query string false "morning|afternoon|evening|all"
// @Param        duration_band query string false "short|medium|long|all"
// @Param        kind query string false "strength|cardio|mobility|all"
// @Param        only_available query bool false "Keep only available and few_left"
// @Param        sort query string false "popular|closest|least_occupied|recommended"
// @Success      200 {array} class.SessionWithAvailability
// @Failure      500 {object} api.ErrorResponse
// @Router       /sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	var opts FilterOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	sessions, err := h.service.ListSessions(ctx, opts, ParseSortMode(c.Query("sort")), auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary      Today's sessions
// @Tags         sessions
// @Produce      json
// @Success      200 {array} class.SessionWithAvailability
// @Failure      500 {object} api.ErrorResponse
// @Router       /sessions/today [get]
func (h *Handler) TodaySessions(c *gin.Context) {
	ctx := c.Request.Context()
	sessions, err := h.service.TodaySessions(ctx, auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary      Create a class
// @Tags         admin,classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body class.CreateClassRequest true "Class payload"
// @Success      201 {object} class.GymClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	class, err := h.service.CreateClass(ctx, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create class"})
		return
	}

	c.JSON(http.StatusCreated, class)
}

// @Summary      Update a class
// @Tags         admin,classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Param        request body class.UpdateClassRequest true "Fields to update"
// @Success      200 {object} class.GymClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID} [put]
func (h *Handler) UpdateClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	var req UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	class, err := h.service.UpdateClass(ctx, classID, req)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update class"})
		return
	}

	c.JSON(http.StatusOK, class)
}

// @Summary      Deactivate a class
// @Tags         admin,classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID} [delete]
func (h *Handler) DeactivateClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	ctx := c.Request.Context()
	if err := h.service.DeactivateClass(ctx, classID); err != nil {
		if errors.Is(err, ErrClassNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to deactivate class"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Class deactivated"})
}

// @Summary      Create a session
// @Tags         admin,sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Param        request body class.CreateSessionRequest true "Session payload"
// @Success      201 {object} class.ClassSession
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID}/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	session, err := h.service.CreateSession(ctx, classID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
		case errors.Is(err, ErrSessionInvalid):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid session data"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create session"})
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}

// @Summary      Cancel a session
// @Tags         admin,sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/sessions/{sessionID}/cancel [post]
func (h *Handler) CancelSession(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	ctx := c.Request.Context()
	if err := h.service.CancelSession(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Session not found or already cancelled"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel session"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Session cancelled"})
}
