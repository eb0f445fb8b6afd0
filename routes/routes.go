package routes

import (
	"camping/auth"
	"camping/classes"
	"camping/middleware"
	"camping/models"
	"camping/payments"
	"camping/ratelim"
	"camping/seatfeed"
	"camping/selections"
	"camping/users"

	"github.com/julienschmidt/httprouter"
)

// Deps carries the constructed services into route registration. Everything
// is built once in main and injected here.
type Deps struct {
	Auth        *middleware.Auth
	RateLimiter *ratelim.RateLimiter
	Tokens      *auth.Service
	Users       *users.Service
	Classes     *classes.Service
	Selections  *selections.Service
	Payments    *payments.Service
	Idem        *payments.Idempotency
	Feed        *seatfeed.Feed
}

func RoutesWrapper(router *httprouter.Router, d Deps) {
	AddAuthRoutes(router, d)
	AddUserRoutes(router, d)
	AddClassRoutes(router, d)
	AddSelectionRoutes(router, d)
	AddPaymentRoutes(router, d)
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/auth/token", d.RateLimiter.Limit(d.Tokens.IssueToken))
}

func AddUserRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/users", d.RateLimiter.Limit(d.Users.CreateUser))
	router.GET("/api/users",
		middleware.Chain(
			d.Auth.Authenticate,
			d.Auth.RequireRole(models.RoleAdmin),
		)(d.Users.ListUsers),
	)

	router.GET("/api/users/admin/:email",
		middleware.Chain(
			d.Auth.Authenticate,
			middleware.RequireOwnEmail(middleware.ParamEmail),
		)(d.Users.AdminStatus),
	)
	router.GET("/api/users/instructor/:email",
		middleware.Chain(
			d.Auth.Authenticate,
			middleware.RequireOwnEmail(middleware.ParamEmail),
		)(d.Users.InstructorStatus),
	)

	router.PATCH("/api/users/:id/admin",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
			d.Auth.RequireRole(models.RoleAdmin),
		)(d.Users.GrantAdmin),
	)
	router.PATCH("/api/users/:id/instructor",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
			d.Auth.RequireRole(models.RoleAdmin),
		)(d.Users.GrantInstructor),
	)
}

func AddClassRoutes(router *httprouter.Router, d Deps) {
	// public listings
	router.GET("/api/catalog", d.Classes.ListCatalog)
	router.GET("/api/classes", d.Classes.ListApproved)

	// instructor surface
	router.POST("/api/submissions",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
			d.Auth.RequireRole(models.RoleInstructor),
		)(d.Classes.Submit),
	)
	router.GET("/api/submissions",
		middleware.Chain(
			d.Auth.Authenticate,
			middleware.RequireOwnEmail(middleware.QueryEmail),
		)(d.Classes.ListMine),
	)
	router.GET("/api/submissions/:id", d.Auth.Authenticate(d.Classes.Get))
	router.DELETE("/api/submissions/:id",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
		)(d.Classes.Delete),
	)
	router.POST("/api/submissions/:id/image",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
		)(d.Classes.UploadImage),
	)

	// admin review surface
	router.GET("/api/admin/classes",
		middleware.Chain(
			d.Auth.Authenticate,
			d.Auth.RequireRole(models.RoleAdmin),
		)(d.Classes.ListAll),
	)
	router.PUT("/api/submissions/:id/status",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
			d.Auth.RequireRole(models.RoleAdmin),
		)(d.Classes.UpdateStatus),
	)
	router.POST("/api/submissions/:id/feedback",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
			d.Auth.RequireRole(models.RoleAdmin),
		)(d.Classes.AttachFeedback),
	)

	// live seat counts
	router.GET("/ws/classes/:id/seats", d.Auth.AuthenticateWS(d.Feed.ServeWS))
}

func AddSelectionRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/selections",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
		)(d.Selections.Create),
	)
	router.GET("/api/selections",
		middleware.Chain(
			d.Auth.Authenticate,
			middleware.RequireOwnEmail(middleware.QueryEmail),
		)(d.Selections.ListMine),
	)
	router.GET("/api/selections/:id", d.Auth.Authenticate(d.Selections.Get))
	router.DELETE("/api/selections/:id",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
		)(d.Selections.Delete),
	)
}

func AddPaymentRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/payments/intent",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
		)(d.Payments.CreateIntent),
	)
	router.POST("/api/payments",
		middleware.Chain(
			d.RateLimiter.Limit,
			d.Auth.Authenticate,
			d.Idem.Middleware,
		)(d.Payments.Settle),
	)
	router.GET("/api/payments",
		middleware.Chain(
			d.Auth.Authenticate,
			middleware.RequireOwnEmail(middleware.QueryEmail),
		)(d.Payments.ListMine),
	)
	router.GET("/api/payments/:id/receipt", d.Auth.Authenticate(d.Payments.Receipt))
}
