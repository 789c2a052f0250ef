package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/services"
	"github.com/submisoon/assessment-service/internal/utils"
	"github.com/submisoon/assessment-service/internal/validator"
)

type HandlerManager struct {
	assessmentHandler  *AssessmentHandler
	leaderboardHandler *LeaderboardHandler
	authHandler        *AuthHandler
	fileHandler        *FileHandler
	authService        services.AuthService
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		assessmentHandler:  NewAssessmentHandler(serviceManager.Assessment(), validator, logger),
		leaderboardHandler: NewLeaderboardHandler(serviceManager.Leaderboard(), logger),
		authHandler:        NewAuthHandler(serviceManager.Auth(), validator, logger),
		fileHandler:        NewFileHandler(serviceManager.FileAccess(), logger),
		authService:        serviceManager.Auth(),
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	api := router.Group("/api")
	{
		// Signed file links carry their own credentials; no auth middleware.
		api.GET("/files/:id", hm.fileHandler.ServeFile)

		v1 := api.Group("/v1")
		{
			auth := v1.Group("/auth")
			{
				auth.POST("/login", hm.authHandler.Login)
			}

			authenticated := v1.Group("")
			authenticated.Use(JWTAuthMiddleware(hm.authService))
			{
				assessments := authenticated.Group("/assessments")
				assessments.Use(RequireRoleMiddleware(string(models.RoleStudent)))
				{
					assessments.GET("/incomplete", hm.assessmentHandler.GetIncompleteAssessments)
					assessments.GET("/incomplete/:id", hm.assessmentHandler.GetIncompleteAssessmentDetail)
					assessments.GET("/completed", hm.assessmentHandler.GetCompletedAssessments)
					assessments.GET("/completed/:id", hm.assessmentHandler.GetCompletedAssessmentDetail)
					assessments.PUT("/:id/draft", hm.assessmentHandler.SaveDraft)
					assessments.POST("/:id/submit", hm.assessmentHandler.Submit)
				}

				leaderboard := authenticated.Group("/leaderboard")
				{
					leaderboard.GET("", hm.leaderboardHandler.GetLeaderboard)
					leaderboard.GET("/export", hm.leaderboardHandler.ExportLeaderboard)
				}
			}
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "assessment-service",
	})
}
