package httptransport

import (
	"html/template"
	"log/slog"

	"github.com/ErlanBelekov/quote-web/internal/transport/http/handler"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/middleware"
	"github.com/ErlanBelekov/quote-web/internal/views"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type Handlers struct {
	Pages        *handler.PageHandler
	Auth         *handler.AuthHandler
	Account      *handler.AccountHandler
	Checkout     *handler.CheckoutHandler
	Confirmation *handler.ConfirmationHandler
}

type Middleware struct {
	Session        gin.HandlerFunc
	Guard          gin.HandlerFunc
	CheckoutOrigin string
}

func NewRouter(logger *slog.Logger, tmpl *template.Template, h Handlers, mw Middleware) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(mw.CheckoutOrigin))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(mw.Session)

	r.SetHTMLTemplate(tmpl)
	r.NoRoute(handler.NotFound)
	r.StaticFS("/static", views.Assets())

	// Public pages
	r.GET("/", h.Pages.Home)
	r.GET("/about", h.Pages.Static("about"))
	r.GET("/privacy", h.Pages.Static("privacy"))
	r.GET("/terms", h.Pages.Static("terms"))
	r.GET("/blog", h.Pages.Blog)
	r.GET("/blog/:slug", h.Pages.Post)
	r.GET("/pricing", h.Pages.Pricing)
	r.GET("/contact", h.Account.ContactForm)
	r.POST("/contact", h.Account.Contact)

	// Authentication
	r.GET("/login", h.Auth.LoginForm)
	r.POST("/login", h.Auth.Login)
	r.GET("/register", h.Auth.RegisterForm)
	r.POST("/register", h.Auth.Register)
	r.POST("/logout", h.Auth.Logout)
	r.GET("/forgot-password", h.Auth.ForgotForm)
	r.POST("/forgot-password", h.Auth.Forgot)
	r.GET("/reset-password/:token", h.Auth.ResetForm)
	r.POST("/reset-password/:token", h.Auth.Reset)

	// Payment needs a token but not a paid account
	pay := r.Group("", middleware.RequireToken())
	pay.GET("/payment", h.Checkout.Payment)
	pay.POST("/checkout/open", h.Checkout.Open)
	pay.POST("/checkout/events", h.Checkout.Events)
	r.GET("/payment-success", h.Confirmation.Success)
	r.GET("/payment-success/status", h.Confirmation.Status)

	// Guarded account routes
	account := r.Group("", mw.Guard)
	account.GET("/preferences", h.Account.Preferences)
	account.POST("/preferences", h.Account.SavePreferences)
	account.POST("/account/delete", h.Account.Delete)

	return r
}
