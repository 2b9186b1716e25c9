package routes

import (
	agenciesapi "agency-hub/internal/api/agencies"
	authapi "agency-hub/internal/api/auth"
	briefingapi "agency-hub/internal/api/briefing"
	"agency-hub/internal/api/billing"
	financeapi "agency-hub/internal/api/finance"
	invitationsapi "agency-hub/internal/api/invitations"
	notificationsapi "agency-hub/internal/api/notifications"
	portalapi "agency-hub/internal/api/portal"
	projectsapi "agency-hub/internal/api/projects"
	"agency-hub/internal/api/realtime"
	"agency-hub/internal/api/stripewebhook"
	usersapi "agency-hub/internal/api/users"
	"agency-hub/internal/app/http/middleware"
	"agency-hub/internal/domain/users"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Stripe signs the raw body; the webhook must bypass sanitization.
	r.POST("/webhook", stripewebhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/verify", authapi.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Public client portal: no auth, the link itself is the credential.
	public.GET("/portal/:agencyId/:projectId", portalapi.GetPortal)
	public.POST("/portal/:agencyId/:projectId/approve", portalapi.ApproveGroup)
	public.POST("/portal/:agencyId/:projectId/request-adjustment", portalapi.RequestAdjustment)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeAndCleanInputMiddleware())
	auth.GET("/me", usersapi.GetCurrentUser)
	auth.POST("/change-password", authapi.ChangePassword)

	auth.POST("/create-checkout-session", billing.CreateCheckoutSession)
	auth.POST("/billing-portal", billing.CreateBillingPortal)
	auth.GET("/subscription", billing.GetSubscription)

	auth.POST("/agencies", agenciesapi.CreateAgency)

	auth.GET("/invitations", invitationsapi.ListInvitations)
	auth.POST("/invitations/:id/accept", invitationsapi.AcceptInvitation)
	auth.DELETE("/invitations/:id", invitationsapi.DeclineInvitation)

	// Realtime stream opens the live session; mutations reference it via
	// the X-Session-ID header.
	auth.GET("/realtime", realtime.Stream)

	// Product surface: agency-linked and subscribed (or in trial)
	app := auth.Group("/")
	app.Use(middleware.RequireAgency(), middleware.RequireActiveSubscription())

	app.GET("/agency", agenciesapi.GetAgency)
	app.PUT("/agency", agenciesapi.UpdateAgency)

	app.GET("/projects", projectsapi.ListProjects)
	app.POST("/projects", projectsapi.CreateProject)
	app.GET("/projects/:id", projectsapi.GetProject)
	app.PUT("/projects/:id", projectsapi.UpdateProject)
	app.POST("/projects/:id/move", projectsapi.MoveProject)
	app.DELETE("/projects/:id", projectsapi.DeleteProject)
	app.GET("/projects/:id/carousels", projectsapi.Carousels)

	app.POST("/briefing", briefingapi.GenerateBriefing)
	app.POST("/briefing/optimize", briefingapi.OptimizeContent)

	app.GET("/notifications", notificationsapi.ListNotifications)
	app.POST("/notifications/mark-all-read", notificationsapi.MarkAllRead)
	app.DELETE("/notifications/read", notificationsapi.ClearRead)

	// Owner-only: finance and team management
	owner := app.Group("/")
	owner.Use(middleware.RequireRole(users.RoleOwner))

	owner.GET("/invoices", financeapi.ListInvoices)
	owner.POST("/invoices", financeapi.CreateInvoice)
	owner.PUT("/invoices/:id", financeapi.UpdateInvoice)
	owner.DELETE("/invoices/:id", financeapi.DeleteInvoice)

	owner.GET("/expenses", financeapi.ListExpenses)
	owner.POST("/expenses", financeapi.CreateExpense)
	owner.PUT("/expenses/:id", financeapi.UpdateExpense)
	owner.DELETE("/expenses/:id", financeapi.DeleteExpense)

	owner.POST("/invitations", invitationsapi.InviteDesigner)
	owner.DELETE("/team", invitationsapi.RemoveDesigner)
}
