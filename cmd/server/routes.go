package main

import (
	"github.com/gin-gonic/gin"

	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/internal/handlers"
	"github.com/danodev/daworks/internal/middleware"
	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Rate limiters for the public intake form and the one-shot chat proxy
	intakeLimiter := middleware.NewRateLimiter(2, 5)
	chatLimiter := middleware.NewRateLimiter(1, 3)

	// Health check and Prometheus metrics
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)
	r.GET("/metrics", handlers.Metrics)

	// Uploaded client documents. Stored names are random UUIDs.
	r.Static("/uploads", svc.storage.Dir())

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// SSE events (public route with internal token validation)
		sseHandler := handlers.NewSSEHandler(services.GetSSEHub())
		api.GET("/events/notifications", sseHandler.StreamEvents)

		// Public patient intake form (rate limited)
		patientHandler := handlers.NewPatientHandler(models.GetDB())
		api.POST("/intake", intakeLimiter.Middleware(), patientHandler.SubmitIntake)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(models.GetDB())
			protected.GET("/dashboard/overview", dashboardHandler.GetOverview)

			// Global search
			searchHandler := handlers.NewSearchHandler(models.GetDB())
			protected.GET("/search", searchHandler.Search)

			// User roster for assignee and mention pickers
			userHandler := handlers.NewUserHandler(models.GetDB())
			protected.GET("/users/list", userHandler.Roster)

			// Companies
			companyHandler := handlers.NewCompanyHandler(models.GetDB())
			protected.GET("/companies", companyHandler.List)
			protected.GET("/companies/:id", companyHandler.GetByID)
			protected.POST("/companies", companyHandler.Create)
			protected.PUT("/companies/:id", companyHandler.Update)
			protected.DELETE("/companies/:id", companyHandler.Delete)

			// Contacts
			contactHandler := handlers.NewContactHandler(models.GetDB())
			protected.GET("/contacts", contactHandler.List)
			protected.GET("/contacts/:id", contactHandler.GetByID)
			protected.POST("/contacts", contactHandler.Create)
			protected.PUT("/contacts/:id", contactHandler.Update)
			protected.DELETE("/contacts/:id", contactHandler.Delete)

			// Projects
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Marketing (campaigns, expenses, leads, metrics, imports, exports)
			marketingHandler := handlers.NewMarketingHandler(models.GetDB(), &cfg.Marketing)
			marketing := protected.Group("/projects/:id/marketing")
			{
				marketing.GET("/campaigns", marketingHandler.ListCampaigns)
				marketing.GET("/campaigns/:campaign_id", marketingHandler.GetCampaign)
				marketing.POST("/campaigns", marketingHandler.CreateCampaign)
				marketing.PUT("/campaigns/:campaign_id", marketingHandler.UpdateCampaign)
				marketing.DELETE("/campaigns/:campaign_id", marketingHandler.DeleteCampaign)

				marketing.GET("/expenses", marketingHandler.ListExpenses)
				marketing.POST("/expenses", marketingHandler.CreateExpense)
				marketing.PUT("/expenses/:expense_id", marketingHandler.UpdateExpense)
				marketing.DELETE("/expenses/:expense_id", marketingHandler.DeleteExpense)
				marketing.POST("/expenses/import", marketingHandler.ImportExpenses)

				marketing.GET("/imports", marketingHandler.ListImportJobs)
				marketing.GET("/imports/:job_id", marketingHandler.GetImportJob)

				marketing.GET("/leads", marketingHandler.ListLeads)
				marketing.GET("/leads/:lead_id", marketingHandler.GetLead)
				marketing.POST("/leads", marketingHandler.CreateLead)
				marketing.PUT("/leads/:lead_id", marketingHandler.UpdateLead)
				marketing.DELETE("/leads/:lead_id", marketingHandler.DeleteLead)

				marketing.GET("/metrics", marketingHandler.GetMetrics)
				marketing.GET("/conversions/:platform", marketingHandler.ExportConversions)
				marketing.POST("/conversions/:platform/push", marketingHandler.PushConversions)
			}

			// Patients
			protected.GET("/patients", patientHandler.List)
			protected.GET("/patients/:id", patientHandler.GetByID)
			protected.POST("/patients", patientHandler.Create)
			protected.PUT("/patients/:id", patientHandler.Update)
			protected.DELETE("/patients/:id", patientHandler.Delete)

			// Tasks
			taskHandler := handlers.NewTaskHandler(models.GetDB())
			protected.GET("/tasks", taskHandler.List)
			protected.GET("/tasks/:id", taskHandler.GetByID)
			protected.POST("/tasks", taskHandler.Create)
			protected.PUT("/tasks/:id", taskHandler.Update)
			protected.DELETE("/tasks/:id", taskHandler.Delete)
			protected.POST("/tasks/:id/acknowledge", taskHandler.Acknowledge)

			// AI assistant
			assistantHandler := handlers.NewAssistantHandler(models.GetDB(), &cfg.OpenAI)
			protected.GET("/assistant/conversations", assistantHandler.ListConversations)
			protected.GET("/assistant/conversations/:id", assistantHandler.GetConversation)
			protected.POST("/assistant/conversations", assistantHandler.CreateConversation)
			protected.PUT("/assistant/conversations/:id", assistantHandler.UpdateConversation)
			protected.DELETE("/assistant/conversations/:id", assistantHandler.DeleteConversation)
			protected.POST("/assistant/conversations/:id/messages", assistantHandler.SendMessage)
			protected.POST("/chat", chatLimiter.Middleware(), assistantHandler.Chat)

			// LLM configs (read access so users can pick a model)
			llmConfigHandler := handlers.NewLLMConfigHandler(models.GetDB())
			protected.GET("/llm-configs/active", llmConfigHandler.GetActive)

			// Prompts (read for all users)
			promptHandler := handlers.NewPromptHandler(models.GetDB())
			protected.GET("/prompts", promptHandler.List)
			protected.GET("/prompts/default", promptHandler.GetDefault)
			protected.GET("/prompts/active", promptHandler.GetAllActive)
			protected.GET("/prompts/:id", promptHandler.GetByID)

			// Danote boards
			boardHandler := handlers.NewBoardHandler(models.GetDB())
			protected.GET("/boards", boardHandler.List)
			protected.GET("/boards/:id", boardHandler.GetByID)
			protected.POST("/boards", boardHandler.Create)
			protected.PUT("/boards/:id", boardHandler.Update)
			protected.DELETE("/boards/:id", boardHandler.Delete)
			protected.POST("/boards/:id/elements", boardHandler.CreateElement)
			protected.PUT("/boards/:id/elements/:element_id", boardHandler.UpdateElement)
			protected.DELETE("/boards/:id/elements/:element_id", boardHandler.DeleteElement)
			protected.POST("/boards/:id/elements/:element_id/z-order", boardHandler.SetZOrder)
			protected.POST("/boards/:id/elements/:element_id/reparent", boardHandler.Reparent)
			protected.POST("/boards/:id/elements/:element_id/detach", boardHandler.Detach)

			// Board comments
			boardCommentHandler := handlers.NewBoardCommentHandler(models.GetDB())
			protected.GET("/boards/:id/comments", boardCommentHandler.List)
			protected.POST("/boards/:id/comments", boardCommentHandler.Create)
			protected.DELETE("/boards/:id/comments/:comment_id", boardCommentHandler.Delete)

			// Notifications
			notificationHandler := handlers.NewNotificationHandler(models.GetDB())
			protected.GET("/notifications", notificationHandler.List)
			protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
			protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)

			// Dischat
			chatHandler := handlers.NewChatHandler(models.GetDB(), cfg)
			protected.GET("/dischat/permissions", chatHandler.PermissionCatalog)
			protected.POST("/dischat/join", chatHandler.Join)
			protected.POST("/dischat/agora/token", chatHandler.MintRTCToken)
			dischat := protected.Group("/dischat/servers")
			{
				dischat.GET("", chatHandler.ListServers)
				dischat.GET("/:id", chatHandler.GetServer)
				dischat.POST("", chatHandler.CreateServer)
				dischat.PUT("/:id", chatHandler.UpdateServer)
				dischat.DELETE("/:id", chatHandler.DeleteServer)
				dischat.POST("/:id/leave", chatHandler.Leave)
				dischat.POST("/:id/invite/reset", chatHandler.ResetInvite)
				dischat.GET("/:id/invite/qr", chatHandler.InviteQR)

				dischat.POST("/:id/channels", chatHandler.CreateChannel)
				dischat.PUT("/:id/channels/:channel_id", chatHandler.UpdateChannel)
				dischat.DELETE("/:id/channels/:channel_id", chatHandler.DeleteChannel)

				dischat.GET("/:id/channels/:channel_id/messages", chatHandler.ListMessages)
				dischat.POST("/:id/channels/:channel_id/messages", chatHandler.SendMessage)
				dischat.PUT("/:id/channels/:channel_id/messages/:message_id", chatHandler.UpdateMessage)
				dischat.DELETE("/:id/channels/:channel_id/messages/:message_id", chatHandler.DeleteMessage)

				dischat.GET("/:id/roles", chatHandler.ListRoles)
				dischat.POST("/:id/roles", chatHandler.CreateRole)
				dischat.PUT("/:id/roles/:role_id", chatHandler.UpdateRole)
				dischat.DELETE("/:id/roles/:role_id", chatHandler.DeleteRole)

				dischat.GET("/:id/members", chatHandler.ListMembers)
				dischat.PUT("/:id/members/:member_id", chatHandler.UpdateMember)
				dischat.DELETE("/:id/members/:member_id", chatHandler.KickMember)
			}

			// Account clients, documents, adhoc requirements, statements
			accountHandler := handlers.NewAccountHandler(models.GetDB(), svc.storage)
			accounts := protected.Group("/accounts/clients")
			{
				accounts.GET("", accountHandler.ListClients)
				accounts.GET("/:id", accountHandler.GetClient)
				accounts.POST("", accountHandler.CreateClient)
				accounts.PUT("/:id", accountHandler.UpdateClient)
				accounts.DELETE("/:id", accountHandler.DeleteClient)

				accounts.GET("/:id/documents", accountHandler.ListDocuments)
				accounts.POST("/:id/documents", accountHandler.UploadDocument)
				accounts.DELETE("/:id/documents/:doc_id", accountHandler.DeleteDocument)

				accounts.GET("/:id/adhoc", accountHandler.ListAdhoc)
				accounts.POST("/:id/adhoc", accountHandler.CreateAdhoc)
				accounts.PUT("/:id/adhoc/:adhoc_id", accountHandler.UpdateAdhoc)
				accounts.DELETE("/:id/adhoc/:adhoc_id", accountHandler.DeleteAdhoc)

				accounts.GET("/:id/statement", accountHandler.Statement)
				accounts.GET("/:id/statement/export", accountHandler.ExportStatement)
				accounts.GET("/:id/statement/items", accountHandler.ListStatementItems)
				accounts.POST("/:id/statement/items", accountHandler.CreateStatementItem)
				accounts.PUT("/:id/statement/items/:item_id", accountHandler.UpdateStatementItem)
				accounts.DELETE("/:id/statement/items/:item_id", accountHandler.DeleteStatementItem)
			}
		}

		// Admin only routes, with write operations audited
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Users
			userHandler := handlers.NewUserHandler(models.GetDB())
			admin.GET("/users", userHandler.List)
			admin.POST("/users", userHandler.Create)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			// LLM Configs
			llmConfigHandler := handlers.NewLLMConfigHandler(models.GetDB())
			admin.GET("/llm-configs", llmConfigHandler.List)
			admin.GET("/llm-configs/:id", llmConfigHandler.GetByID)
			admin.POST("/llm-configs", llmConfigHandler.Create)
			admin.PUT("/llm-configs/:id", llmConfigHandler.Update)
			admin.DELETE("/llm-configs/:id", llmConfigHandler.Delete)

			// Prompts (write operations)
			promptHandler := handlers.NewPromptHandler(models.GetDB())
			admin.POST("/prompts", promptHandler.Create)
			admin.PUT("/prompts/:id", promptHandler.Update)
			admin.DELETE("/prompts/:id", promptHandler.Delete)
			admin.POST("/prompts/:id/set-default", promptHandler.SetDefault)

			// Notify bots
			notifyBotHandler := handlers.NewNotifyBotHandler(models.GetDB())
			admin.GET("/notify-bots", notifyBotHandler.List)
			admin.GET("/notify-bots/:id", notifyBotHandler.GetByID)
			admin.POST("/notify-bots", notifyBotHandler.Create)
			admin.PUT("/notify-bots/:id", notifyBotHandler.Update)
			admin.DELETE("/notify-bots/:id", notifyBotHandler.Delete)
			admin.POST("/notify-bots/:id/test", notifyBotHandler.SendTest)

			// AI usage statistics
			aiUsageHandler := handlers.NewAIUsageHandler(models.GetDB())
			admin.GET("/ai-usage/stats", aiUsageHandler.GetStats)
			admin.GET("/ai-usage/daily-trend", aiUsageHandler.GetDailyTrend)
			admin.GET("/ai-usage/providers", aiUsageHandler.GetProviderBreakdown)
			admin.GET("/ai-usage/conversations", aiUsageHandler.GetTopConversations)

			// System Logs
			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.GET("/system-logs/retention", systemLogHandler.GetRetentionDays)
			admin.PUT("/system-logs/retention", systemLogHandler.SetRetentionDays)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)

			// System Config
			systemConfigHandler := handlers.NewSystemConfigHandler(models.GetDB())
			admin.GET("/system-config/ldap", systemConfigHandler.GetLDAPConfig)
			admin.PUT("/system-config/ldap", systemConfigHandler.UpdateLDAPConfig)
			admin.GET("/system-config/digest", systemConfigHandler.GetDigestConfig)
			admin.PUT("/system-config/digest", updateDigestConfig(systemConfigHandler, svc.digestService))
			admin.GET("/system-config/holiday-countries", systemConfigHandler.ListHolidayCountries)

			// Marketing digests
			digestHandler := handlers.NewDigestHandler(svc.digestService)
			admin.GET("/digests", digestHandler.List)
			admin.GET("/digests/:id", digestHandler.Get)
			admin.POST("/digests/generate", digestHandler.Generate)
			admin.POST("/digests/:id/resend", digestHandler.Resend)
		}
	}
}

// updateDigestConfig wraps the config update so a changed digest time
// reschedules the cron entry immediately.
func updateDigestConfig(h *handlers.SystemConfigHandler, digest *services.DigestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.UpdateDigestConfig(c)
		if c.Writer.Status() < 300 {
			digest.RefreshSchedule()
		}
	}
}
