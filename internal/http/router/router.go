package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/needanevo/Handyman-app-sub000/internal/config"
	"github.com/needanevo/Handyman-app-sub000/internal/http/handlers"
	"github.com/needanevo/Handyman-app-sub000/internal/http/middleware"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	jobHandler *handlers.JobHandler,
	proposalHandler *handlers.ProposalHandler,
	walletHandler *handlers.WalletHandler,
	growthHandler *handlers.GrowthHandler,
	profileHandler *handlers.ProfileHandler,
	mediaHandler *handlers.MediaHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	providerRoles := []string{models.RoleHandyman, models.RoleContractor}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/ws", wsHandler.Connect)

		// Jobs.
		protected.POST("/jobs", middleware.RequireRoles(models.RoleCustomer), jobHandler.Create)
		protected.GET("/jobs/my", middleware.RequireRoles(models.RoleCustomer), jobHandler.ListMine)
		protected.GET("/jobs/assigned", middleware.RequireRoles(providerRoles...), jobHandler.ListAssigned)
		protected.GET("/jobs/feed", middleware.RequireRoles(providerRoles...), jobHandler.Feed)
		protected.GET("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.Get)
		protected.PUT("/jobs/:id", middleware.UUIDValidator("id"), middleware.RequireRoles(models.RoleCustomer), jobHandler.Update)
		protected.POST("/jobs/:id/transition", middleware.UUIDValidator("id"), jobHandler.Transition)
		protected.POST("/jobs/:id/auto-route", middleware.UUIDValidator("id"), middleware.RequireRoles(models.RoleCustomer), jobHandler.AutoRoute)

		// Proposals.
		protected.POST("/jobs/:id/proposals", middleware.UUIDValidator("id"), middleware.RequireRoles(providerRoles...), proposalHandler.Create)
		protected.GET("/jobs/:id/proposals", middleware.UUIDValidator("id"), middleware.RequireRoles(models.RoleCustomer), proposalHandler.ListForJob)
		protected.GET("/proposals/my", middleware.RequireRoles(providerRoles...), proposalHandler.ListMine)
		protected.POST("/proposals/:id/withdraw", middleware.UUIDValidator("id"), middleware.RequireRoles(providerRoles...), proposalHandler.Withdraw)

		// Reviews feed the contractor growth log.
		protected.POST("/jobs/:id/review", middleware.UUIDValidator("id"), middleware.RequireRoles(models.RoleCustomer), growthHandler.SubmitReview)

		// Wallet and payouts.
		protected.GET("/wallet/summary", middleware.RequireRoles(providerRoles...), walletHandler.Summary)
		protected.GET("/wallet/payouts", middleware.RequireRoles(providerRoles...), walletHandler.ListPayouts)
		protected.GET("/jobs/:id/payout", middleware.UUIDValidator("id"), middleware.RequireRoles(providerRoles...), walletHandler.GetForJob)
		protected.POST("/payouts/:id/queue", middleware.UUIDValidator("id"), middleware.RequireRoles(models.RoleAdmin), walletHandler.Queue)
		protected.POST("/payouts/:id/settle", middleware.UUIDValidator("id"), middleware.RequireRoles(models.RoleAdmin), walletHandler.Settle)

		// Growth.
		protected.GET("/growth/summary", middleware.RequireRoles(providerRoles...), growthHandler.Summary)
		protected.GET("/growth/events", middleware.RequireRoles(providerRoles...), growthHandler.Events)

		// Profile.
		protected.POST("/profile/addresses", profileHandler.AddAddress)
		protected.GET("/profile/addresses", profileHandler.ListAddresses)
		protected.PUT("/profile/contractor", middleware.RequireRoles(providerRoles...), profileHandler.UpdateContractorProfile)
		protected.GET("/users/:id/contractor-profile", middleware.UUIDValidator("id"), profileHandler.GetContractorProfile)

		// Media.
		protected.POST("/media", mediaHandler.Upload)
		protected.GET("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Download)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Delete)
		protected.GET("/jobs/:id/media", middleware.UUIDValidator("id"), mediaHandler.ListForJob)

		// Notifications.
		protected.GET("/notifications", notificationHandler.List)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
	}

	return r
}
