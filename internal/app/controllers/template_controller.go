package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/app/services"
	"github.com/arda/classplanner/internal/middleware"
	"github.com/arda/classplanner/internal/pkg/helpers"
)

// TemplateController handles recurrence template endpoints
type TemplateController struct {
	templateService *services.TemplateService
}

// NewTemplateController creates a new TemplateController
func NewTemplateController(templateService *services.TemplateService) *TemplateController {
	return &TemplateController{
		templateService: templateService,
	}
}

// CreateTemplate handles template creation
// @Summary Create a session template
// @Description Creates a recurrence template. WEEKLY and CUSTOM patterns require at least one weekday; the session duration is derived from the time window.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTemplateRequest true "Template definition"
// @Success 201 {object} dto.APIResponse{data=models.SessionTemplate} "Template created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid template definition"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /templates [post]
func (c *TemplateController) CreateTemplate(ctx *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	template, err := c.templateService.CreateTemplate(ctx, &req, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(template))
}

// GetTemplateByID retrieves a template by ID
// @Summary Get template by ID
// @Description Retrieves a specific session template, including the IDs of sessions it has generated
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} dto.APIResponse{data=models.SessionTemplate} "Template retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /templates/{id} [get]
func (c *TemplateController) GetTemplateByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	template, err := c.templateService.GetTemplateByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(template))
}

// ListTemplates retrieves templates with pagination
// @Summary List templates
// @Description Retrieves session templates, paginated
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=[]models.SessionTemplate} "Templates retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /templates [get]
func (c *TemplateController) ListTemplates(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	templates, total, err := c.templateService.ListTemplates(ctx, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(templates, helpers.NewPaginationInfo(total, page, size)))
}

// UpdateTemplate replaces a template definition
// @Summary Update a template
// @Description Replaces a template's definition. Sessions already generated from it are not touched.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body dto.UpdateTemplateRequest true "New template definition"
// @Success 200 {object} dto.APIResponse{data=models.SessionTemplate} "Template updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid template definition"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /templates/{id} [put]
func (c *TemplateController) UpdateTemplate(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	template, err := c.templateService.UpdateTemplate(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(template))
}

// DeleteTemplate removes a template
// @Summary Delete a template
// @Description Removes a template. Sessions generated from it keep existing.
// @Tags templates
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 204 "Template deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /templates/{id} [delete]
func (c *TemplateController) DeleteTemplate(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.templateService.DeleteTemplate(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// PreviewTemplate validates a template batch without persisting it
// @Summary Preview a template application
// @Description Expands the template over the requested range and validates every draft against existing bookings and against the other drafts of the batch. Nothing is persisted.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body dto.TemplateRangeRequest true "Date range; omit to use the template's own window"
// @Success 200 {object} dto.APIResponse{data=dto.BatchValidationSummary} "Per-draft validation summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid range or template definition"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Failure 422 {object} dto.ErrorResponse "Template produces no sessions in the range"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /templates/{id}/preview [post]
func (c *TemplateController) PreviewTemplate(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.TemplateRangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	summary, err := c.templateService.PreviewTemplate(ctx, id, &req, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summary))
}

// ApplyTemplate commits a template batch
// @Summary Apply a template
// @Description Expands the template, validates the batch and persists the sessions in one transaction. With skipConflicts=false any conflict rejects the whole batch; with true, conflicting drafts are skipped and reported.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body dto.ApplyTemplateRequest true "Application options"
// @Success 201 {object} dto.APIResponse{data=dto.ApplyTemplateResult} "Sessions created"
// @Failure 400 {object} dto.ErrorResponse "Invalid range or template definition"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Failure 409 {object} dto.ErrorResponse "Batch conflicts with existing bookings"
// @Failure 422 {object} dto.ErrorResponse "Template produces no sessions in the range"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /templates/{id}/apply [post]
func (c *TemplateController) ApplyTemplate(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ApplyTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.templateService.ApplyTemplate(ctx, id, &req, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(result))
}
