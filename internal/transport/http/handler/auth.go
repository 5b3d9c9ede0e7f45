package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/middleware"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AccountUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResult, error)
	Register(ctx context.Context, in backend.RegisterInput) (*backend.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, resetToken string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
}

// sessionWriter is the part of session.Store that changes who is signed in.
type sessionWriter interface {
	Start(ctx context.Context, w http.ResponseWriter, prev *domain.Session, token string, user *domain.User) (*domain.Session, error)
	Clear(ctx context.Context, w http.ResponseWriter, sess *domain.Session) error
}

type AuthHandler struct {
	account  authUsecaser
	sessions sessionWriter
	logger   *slog.Logger
}

func NewAuthHandler(account authUsecaser, sessions sessionWriter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		account:  account,
		sessions: sessions,
		logger:   logger.With("component", "auth_handler"),
	}
}

type loginForm struct {
	Email    string `form:"email"    binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type registerForm struct {
	Name     string `form:"name"     binding:"required,max=100"`
	Email    string `form:"email"    binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
	Timezone string `form:"timezone"`
}

type emailForm struct {
	Email string `form:"email" binding:"required,email"`
}

type resetForm struct {
	Password string `form:"password" binding:"required,min=8"`
	Confirm  string `form:"confirm"  binding:"required"`
}

// GET /login
func (h *AuthHandler) LoginForm(c *gin.Context) {
	render(c, http.StatusOK, "login", gin.H{"Title": "Log in"})
}

// POST /login
// Paid accounts land on preferences, everyone else on payment.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login", gin.H{"Title": "Log in", "Email": form.Email, "Error": validationMessage(err)})
		return
	}

	res, err := h.account.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			render(c, http.StatusUnauthorized, "login", gin.H{"Title": "Log in", "Email": form.Email, "Error": errInvalidCredentials})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		render(c, http.StatusBadGateway, "login", gin.H{"Title": "Log in", "Email": form.Email, "Error": errUnexpected})
		return
	}

	if !h.startSession(c, res) {
		return
	}
	dest := usecase.PaymentPath
	if res.User.IsPay {
		dest = usecase.PreferencesPath
	}
	c.Redirect(http.StatusSeeOther, dest)
}

// GET /register
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	render(c, http.StatusOK, "register", gin.H{"Title": "Sign up"})
}

// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "register", gin.H{"Title": "Sign up", "Name": form.Name, "Email": form.Email, "Error": validationMessage(err)})
		return
	}

	res, err := h.account.Register(c.Request.Context(), backend.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Timezone: form.Timezone,
	})
	if err != nil {
		msg, status := errUnexpected, http.StatusBadGateway
		if errors.Is(err, domain.ErrEmailTaken) {
			msg, status = errEmailTaken, http.StatusConflict
		} else {
			h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
		}
		render(c, status, "register", gin.H{"Title": "Sign up", "Name": form.Name, "Email": form.Email, "Error": msg})
		return
	}

	if !h.startSession(c, res) {
		return
	}
	c.Redirect(http.StatusSeeOther, usecase.PaymentPath)
}

func (h *AuthHandler) startSession(c *gin.Context, res *backend.AuthResult) bool {
	user := res.User
	if _, err := h.sessions.Start(c.Request.Context(), c.Writer, middleware.SessionFrom(c), res.Token, &user); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "start session", "error", err)
		renderError(c, http.StatusInternalServerError, errUnexpected)
		return false
	}
	return true
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Clear(c.Request.Context(), c.Writer, middleware.SessionFrom(c)); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "clear session", "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GET /forgot-password
func (h *AuthHandler) ForgotForm(c *gin.Context) {
	render(c, http.StatusOK, "forgot_password", gin.H{"Title": "Reset password"})
}

// POST /forgot-password
// Always answers the same way to avoid revealing whether the email exists.
func (h *AuthHandler) Forgot(c *gin.Context) {
	var form emailForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "forgot_password", gin.H{"Title": "Reset password", "Error": validationMessage(err)})
		return
	}

	if err := h.account.ForgotPassword(c.Request.Context(), form.Email); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "forgot password", "error", err)
		render(c, http.StatusBadGateway, "forgot_password", gin.H{"Title": "Reset password", "Error": errUnexpected})
		return
	}
	render(c, http.StatusOK, "forgot_password", gin.H{"Title": "Reset password", "Notice": msgResetSent})
}

// GET /reset-password/:token
func (h *AuthHandler) ResetForm(c *gin.Context) {
	token := c.Param("token")
	data := gin.H{"Title": "Reset password", "ResetToken": token}

	if err := h.account.ValidateResetToken(c.Request.Context(), token); err != nil {
		if !errors.Is(err, domain.ErrResetTokenInvalid) {
			h.logger.ErrorContext(c.Request.Context(), "validate reset token", "error", err)
			data["Error"] = errUnexpected
			render(c, http.StatusBadGateway, "reset_password", data)
			return
		}
		data["Error"] = errResetLinkInvalid
		render(c, http.StatusBadRequest, "reset_password", data)
		return
	}
	data["TokenValid"] = true
	render(c, http.StatusOK, "reset_password", data)
}

// POST /reset-password/:token
func (h *AuthHandler) Reset(c *gin.Context) {
	token := c.Param("token")
	data := gin.H{"Title": "Reset password", "ResetToken": token, "TokenValid": true}

	var form resetForm
	if err := c.ShouldBind(&form); err != nil {
		data["Error"] = validationMessage(err)
		render(c, http.StatusBadRequest, "reset_password", data)
		return
	}
	if form.Password != form.Confirm {
		data["Error"] = errPasswordsDiffer
		render(c, http.StatusBadRequest, "reset_password", data)
		return
	}

	if err := h.account.ResetPassword(c.Request.Context(), token, form.Password); err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			data["TokenValid"] = false
			data["Error"] = errResetLinkInvalid
			render(c, http.StatusBadRequest, "reset_password", data)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "reset password", "error", err)
		data["Error"] = errUnexpected
		render(c, http.StatusBadGateway, "reset_password", data)
		return
	}
	render(c, http.StatusOK, "login", gin.H{"Title": "Log in", "Notice": msgPasswordReset})
}
