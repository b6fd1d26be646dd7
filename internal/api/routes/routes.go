package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/api/handlers"
	"github.com/yoockh/recruitportal/internal/api/middleware"
	"github.com/yoockh/recruitportal/internal/identity"
)

type Deps struct {
	Token      identity.TokenConfig
	Principals middleware.PrincipalLoader
	Limiter    *middleware.RedisLimiter // nil disables rate limiting

	// ApplicationsPerHour caps public submissions per client IP.
	ApplicationsPerHour int

	Auth          *handlers.AuthHandler
	Applications  *handlers.ApplicationHandler
	Booking       *handlers.BookingHandler
	Candidates    *handlers.CandidateHandler
	Slots         *handlers.SlotHandler
	Interviews    *handlers.InterviewHandler
	Notifications *handlers.NotificationHandler
	Users         *handlers.UserHandler
	Dashboard     *handlers.DashboardHandler
	Outbox        *handlers.OutboxHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public
	perHour := d.ApplicationsPerHour
	if perHour <= 0 {
		perHour = 5
	}
	r.POST("/applications", middleware.RateLimitByIP(d.Limiter, "applications", perHour, time.Hour), d.Applications.Submit)
	r.GET("/book-slot/:candidate_id", d.Booking.Page)
	r.POST("/book-slot/:candidate_id", middleware.RateLimitByIP(d.Limiter, "booking", 30, time.Minute), d.Booking.Book)

	r.POST("/auth/login", middleware.RateLimitByIP(d.Limiter, "login", 10, time.Minute), d.Auth.Login)
	r.POST("/auth/logout", d.Auth.Logout)

	// Staff (JWT + roles)
	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuth(d.Token), middleware.LoadPrincipal(d.Principals))

	admin.GET("/me", d.Auth.Me)
	admin.GET("/dashboard", middleware.RequireAction(access.ViewDashboard), d.Dashboard.Stats)

	cand := admin.Group("/candidates")
	cand.GET("", middleware.RequireAction(access.ViewApplications), d.Candidates.List)
	cand.GET("/:candidate_id", middleware.RequireAction(access.ViewApplications), d.Candidates.Get)
	cand.GET("/:candidate_id/history", middleware.RequireAction(access.ViewApplications), d.Candidates.History)
	cand.GET("/:candidate_id/resume", middleware.RequireAction(access.ViewApplications), d.Candidates.Resume)
	cand.POST("/:candidate_id/approve", middleware.RequireAction(access.ApproveCandidate), d.Candidates.Approve)
	cand.POST("/:candidate_id/reject", middleware.RequireAction(access.ApproveCandidate), d.Candidates.Reject)
	cand.PUT("/:candidate_id/status", middleware.RequireAction(access.UpdateStatus), d.Candidates.UpdateStatus)
	cand.POST("/:candidate_id/complete-assessment", middleware.RequireAction(access.CompleteAssessment), d.Candidates.CompleteAssessment)
	cand.DELETE("/:candidate_id", middleware.RequireAction(access.DeleteCandidate), d.Candidates.Delete)

	slots := admin.Group("/slots", middleware.RequireAction(access.ManageSlots))
	slots.GET("", d.Slots.List)
	slots.POST("", d.Slots.Create)
	slots.DELETE("/:slot_id", d.Slots.Delete)

	iv := admin.Group("/interviews")
	iv.GET("", middleware.RequireAction(access.ViewInterviews), d.Interviews.List)
	iv.POST("/:interview_id/feedback", middleware.RequireAction(access.SubmitFeedback), d.Interviews.SubmitFeedback)
	iv.PUT("/:interview_id/feedback", middleware.RequireAction(access.ReviseFeedback), d.Interviews.ReviseFeedback)

	notes := admin.Group("/notifications", middleware.RequireAction(access.ViewNotifications))
	notes.GET("", d.Notifications.List)
	notes.POST("/read", d.Notifications.MarkAllRead)
	notes.GET("/ws", d.Notifications.Stream)

	users := admin.Group("", middleware.RequireAction(access.ManageUsers))
	users.GET("/users", d.Users.List)
	users.POST("/users", d.Users.Create)
	users.PUT("/users/:user_id", d.Users.Update)
	users.DELETE("/users/:user_id", d.Users.Delete)
	users.GET("/roles", d.Users.Roles)

	outbox := admin.Group("/outbox", middleware.RequireAction(access.ViewOutbox))
	outbox.GET("", d.Outbox.List)
	outbox.POST("/:outbox_id/requeue", d.Outbox.Requeue)
}
