package handlers

import (
	"net/http"

	"github.com/error-404/learning-service/internal/services"
	"github.com/error-404/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessionHandler   *SessionHandler
	contentHandler   *ContentHandler
	questionHandler  *QuestionHandler
	reviewHandler    *ReviewHandler
	clanHandler      *ClanHandler
	analyticsHandler *AnalyticsHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		sessionHandler:   NewSessionHandler(serviceManager.Session(), serviceManager.Report(), logger),
		contentHandler:   NewContentHandler(serviceManager.Content(), logger),
		questionHandler:  NewQuestionHandler(serviceManager.Content(), serviceManager.ImportExport(), logger),
		reviewHandler:    NewReviewHandler(serviceManager.Review(), logger),
		clanHandler:      NewClanHandler(serviceManager.Clan(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Course catalog routes
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.contentHandler.CreateCourse)
			courses.GET("", hm.contentHandler.ListCourses)
			courses.GET("/:id", hm.contentHandler.GetCourse)
			courses.PUT("/:id", hm.contentHandler.UpdateCourse)
			courses.DELETE("/:id", hm.contentHandler.DeleteCourse)
			courses.GET("/:id/modules", hm.contentHandler.ListModules)
		}

		modules := v1.Group("/modules")
		{
			modules.POST("", hm.contentHandler.CreateModule)
			modules.GET("/:id/lessons", hm.contentHandler.ListLessons)
		}
		v1.POST("/lessons", hm.contentHandler.CreateLesson)

		// Question pool routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/export", hm.questionHandler.ExportQuestions)
			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		// Adaptive test session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", hm.sessionHandler.StartSession)
			sessions.POST("/:id/confidence", hm.sessionHandler.SetConfidence)
			sessions.POST("/:id/lessons/start", hm.sessionHandler.StartLesson)
			sessions.GET("/:id/next-question", hm.sessionHandler.NextQuestion)
			sessions.POST("/:id/responses", hm.sessionHandler.SubmitResponse)
			sessions.GET("/:id/status", hm.sessionHandler.Status)
			sessions.POST("/:id/complete", hm.sessionHandler.Complete)
			sessions.GET("/:id/report", hm.sessionHandler.Report)
			sessions.DELETE("/:id", hm.sessionHandler.Abandon)
		}

		// Spaced repetition routes
		reviews := v1.Group("/reviews")
		{
			reviews.GET("/due", hm.reviewHandler.DueCards)
			reviews.GET("/session", hm.reviewHandler.PlanSession)
			reviews.POST("/record", hm.reviewHandler.RecordReview)
			reviews.GET("/retention", hm.reviewHandler.Retention)
			reviews.GET("/cards", hm.reviewHandler.ListCards)
		}

		// Clan routes
		clans := v1.Group("/clans")
		{
			clans.POST("", hm.clanHandler.CreateClan)
			clans.GET("", hm.clanHandler.ListClans)
			clans.GET("/:id", hm.clanHandler.GetClan)
			clans.DELETE("/:id", hm.clanHandler.DisbandClan)
			clans.POST("/:id/join", hm.clanHandler.JoinClan)
			clans.POST("/:id/leave", hm.clanHandler.LeaveClan)
			clans.GET("/:id/leaderboard", hm.clanHandler.ClanLeaderboard)
		}
		v1.GET("/leaderboard", hm.clanHandler.GlobalLeaderboard)

		// Analytics routes
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/sessions/:id", hm.analyticsHandler.SessionAnalytics)
			analytics.GET("/users/:user_id/lessons", hm.analyticsHandler.UserLessonStats)
			analytics.GET("/global", hm.analyticsHandler.GlobalStats)
		}
	}
}

// HealthCheck responds with service liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "learning-service",
	})
}
