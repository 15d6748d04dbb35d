package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/arda/classplanner/internal/app/controllers"
	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/middleware"
	"github.com/arda/classplanner/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	sessionController *controllers.SessionController,
	templateController *controllers.TemplateController,
	examController *controllers.ExamController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		sessions := authenticated.Group("/sessions")
		{
			sessions.GET("", sessionController.ListSessions)
			sessions.POST("", sessionController.CreateSession)
			sessions.POST("/check-conflicts", sessionController.CheckConflicts)
			sessions.GET("/:id", sessionController.GetSessionByID)
			sessions.PUT("/:id", sessionController.UpdateSession)
			sessions.POST("/:id/reschedule", sessionController.RescheduleSession)
			sessions.POST("/:id/cancel", sessionController.CancelSession)
			sessions.POST("/:id/start", sessionController.StartSession)
			sessions.POST("/:id/complete", sessionController.CompleteSession)
			sessions.POST("/:id/materials", sessionController.AddMaterial)

			// Hard delete is an admin cleanup tool; cancel is the normal
			// end state.
			sessionsAdmin := sessions.Group("")
			sessionsAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
			{
				sessionsAdmin.DELETE("/:id", sessionController.DeleteSession)
			}
		}

		templates := authenticated.Group("/templates")
		{
			templates.GET("", templateController.ListTemplates)
			templates.POST("", templateController.CreateTemplate)
			templates.GET("/:id", templateController.GetTemplateByID)
			templates.PUT("/:id", templateController.UpdateTemplate)
			templates.DELETE("/:id", templateController.DeleteTemplate)
			templates.POST("/:id/preview", templateController.PreviewTemplate)
			templates.POST("/:id/apply", templateController.ApplyTemplate)
		}

		exams := authenticated.Group("/exams")
		{
			exams.GET("", examController.ListExams)
		}
	}

	// Real-time session event feed
	ws := router.Group("/ws")
	ws.Use(authMiddleware.JWTAuth())
	{
		ws.GET("/sessions", wsHandler.HandleConnection)
	}
}
