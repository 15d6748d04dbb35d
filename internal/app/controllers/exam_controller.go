package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/app/services"
	"github.com/arda/classplanner/internal/middleware"
	"github.com/arda/classplanner/internal/pkg/helpers"
)

// ExamController exposes the read-only exam listing
type ExamController struct {
	examService *services.ExamService
}

// NewExamController creates a new ExamController
func NewExamController(examService *services.ExamService) *ExamController {
	return &ExamController{
		examService: examService,
	}
}

// ListExams retrieves exams with pagination
// @Summary List exams
// @Description Retrieves the exams the conflict detector consults. Exams are managed elsewhere and read only here.
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=[]models.Exam} "Exams retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	exams, total, err := c.examService.ListExams(ctx, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(exams, helpers.NewPaginationInfo(total, page, size)))
}
