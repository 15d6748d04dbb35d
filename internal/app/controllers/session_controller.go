package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/app/services"
	"github.com/arda/classplanner/internal/middleware"
	"github.com/arda/classplanner/internal/pkg/helpers"
)

// SessionController handles class session endpoints
type SessionController struct {
	sessionService *services.SessionService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService *services.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// parseIDParam extracts a positive int64 path parameter or writes a 400.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		errorDetail = errorDetail.WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// currentUserID reads the acting user's id placed by the auth middleware.
func currentUserID(ctx *gin.Context) (int64, bool) {
	value, exists := ctx.Get("userID")
	if !exists {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	userID, ok := value.(int64)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return userID, true
}

// CreateSession handles session creation
// @Summary Create a class session
// @Description Creates a single class session. Unless checkConflicts=false, a slot that collides with existing sessions or exams is rejected with the full conflict report.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param checkConflicts query bool false "Set false to create even if the slot conflicts" default(true)
// @Param request body dto.CreateSessionRequest true "Session information"
// @Success 201 {object} dto.APIResponse{data=models.ClassSession} "Session created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Slot conflicts with existing bookings"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	checkConflicts := ctx.DefaultQuery("checkConflicts", "true") != "false"

	session, err := c.sessionService.CreateSession(ctx, &req, userID, checkConflicts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(session))
}

// GetSessionByID retrieves a session by ID
// @Summary Get session by ID
// @Description Retrieves a specific class session by its ID
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=models.ClassSession} "Session retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSessionByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	session, err := c.sessionService.GetSessionByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// ListSessions retrieves sessions with filtering and pagination
// @Summary List sessions
// @Description Retrieves class sessions filtered by class, section, instructor, status or date range
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param className query string false "Filter by class name"
// @Param section query string false "Filter by section"
// @Param instructorId query int false "Filter by instructor"
// @Param status query string false "Filter by status"
// @Param dateFrom query string false "Earliest session date (YYYY-MM-DD)"
// @Param dateTo query string false "Latest session date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=[]models.ClassSession} "Sessions retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	var filter dto.SessionFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)

	sessions, total, err := c.sessionService.ListSessions(ctx, &filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(sessions, helpers.NewPaginationInfo(total, page, size)))
}

// CheckConflicts tests a proposed slot without persisting anything
// @Summary Check a slot for conflicts
// @Description Evaluates a proposed time slot against existing sessions and exams across instructor, room and student dimensions. Finding conflicts is a normal outcome; the response always succeeds.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ConflictCheckRequest true "Proposed slot"
// @Success 200 {object} dto.APIResponse{data=dto.ConflictReport} "Conflict report"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/check-conflicts [post]
func (c *SessionController) CheckConflicts(ctx *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	report, err := c.sessionService.CheckConflicts(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// UpdateSession patches a session
// @Summary Update a session
// @Description Patches a session. Changing the date, times, room or instructor re-runs conflict detection with the session itself excluded.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.UpdateSessionRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=models.ClassSession} "Session updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Slot conflicts or session is in a terminal state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id} [put]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	session, err := c.sessionService.UpdateSession(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// RescheduleSession moves a session to a new slot
// @Summary Reschedule a session
// @Description Moves an active session to a new conflict-free slot. The session records its original date and can be rescheduled again later.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.RescheduleSessionRequest true "New slot"
// @Success 200 {object} dto.APIResponse{data=models.ClassSession} "Session rescheduled successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "New slot conflicts or session cannot be rescheduled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id}/reschedule [post]
func (c *SessionController) RescheduleSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RescheduleSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	session, err := c.sessionService.RescheduleSession(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// CancelSession cancels a session
// @Summary Cancel a session
// @Description Cancels an active session with a reason. Cancellation frees the slot and never runs conflict detection.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.CancelSessionRequest true "Cancellation reason"
// @Success 200 {object} dto.APIResponse{data=models.ClassSession} "Session cancelled successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session already in a terminal state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id}/cancel [post]
func (c *SessionController) CancelSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CancelSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	session, err := c.sessionService.CancelSession(ctx, id, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// StartSession marks a session as ongoing
// @Summary Start a session
// @Description Marks a scheduled or rescheduled session as ongoing
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=models.ClassSession} "Session started"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session cannot start from its current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id}/start [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	session, err := c.sessionService.StartSession(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// CompleteSession marks a session as completed
// @Summary Complete a session
// @Description Marks an ongoing session as completed
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=models.ClassSession} "Session completed"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session cannot complete from its current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id}/complete [post]
func (c *SessionController) CompleteSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	session, err := c.sessionService.CompleteSession(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// AddMaterial attaches a study resource to a session
// @Summary Add session material
// @Description Attaches a study resource link to a session. Allowed for any session that has not completed or been cancelled.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.AddMaterialRequest true "Material to attach"
// @Success 200 {object} dto.APIResponse{data=models.ClassSession} "Material added"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is in a terminal state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id}/materials [post]
func (c *SessionController) AddMaterial(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddMaterialRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	session, err := c.sessionService.AddMaterial(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// DeleteSession removes a session
// @Summary Delete a session
// @Description Permanently removes a session. Reserved for cleaning up mistakes; cancel is the normal end state.
// @Tags sessions
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 204 "Session deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id} [delete]
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.sessionService.DeleteSession(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
