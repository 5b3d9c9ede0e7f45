package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/middleware"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/gin-gonic/gin"
)

// Categories offered on the preferences form.
var Categories = []string{"motivation", "wisdom", "love", "humor", "success", "mindfulness"}

type accountUsecaser interface {
	Dashboard(ctx context.Context, token string) (*usecase.Dashboard, error)
	SavePreferences(ctx context.Context, token string, prefs domain.Preferences) (*domain.Preferences, error)
	DeleteAccount(ctx context.Context, token string) error
	Contact(ctx context.Context, msg backend.ContactMessage) error
}

type AccountHandler struct {
	account  accountUsecaser
	sessions sessionWriter
	logger   *slog.Logger
}

func NewAccountHandler(account accountUsecaser, sessions sessionWriter, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		account:  account,
		sessions: sessions,
		logger:   logger.With("component", "account_handler"),
	}
}

type preferencesForm struct {
	DeliveryTime string   `form:"delivery_time" binding:"required,datetime=15:04"`
	Timezone     string   `form:"timezone"      binding:"required,timezone"`
	Categories   []string `form:"categories"`
	Channel      string   `form:"channel"       binding:"omitempty,oneof=email sms"`
}

type contactForm struct {
	Name    string `form:"name"    binding:"required,max=100"`
	Email   string `form:"email"   binding:"required,email"`
	Subject string `form:"subject" binding:"max=200"`
	Message string `form:"message" binding:"required,max=5000"`
}

// GET /preferences
func (h *AccountHandler) Preferences(c *gin.Context) {
	d, err := h.account.Dashboard(c.Request.Context(), middleware.SessionFrom(c).Token)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "load dashboard", "error", err)
		renderError(c, http.StatusBadGateway, errUnexpected)
		return
	}
	render(c, http.StatusOK, "preferences", h.preferencesData(d.Preferences, d.SubscriptionStatus))
}

// POST /preferences
func (h *AccountHandler) SavePreferences(c *gin.Context) {
	var form preferencesForm
	if err := c.ShouldBind(&form); err != nil {
		data := h.preferencesData(form.toDomain(), "")
		data["Error"] = validationMessage(err)
		render(c, http.StatusBadRequest, "preferences", data)
		return
	}

	token := middleware.SessionFrom(c).Token
	saved, err := h.account.SavePreferences(c.Request.Context(), token, form.toDomain())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "save preferences", "error", err)
		data := h.preferencesData(form.toDomain(), "")
		data["Error"] = errUnexpected
		render(c, http.StatusBadGateway, "preferences", data)
		return
	}

	status := domain.SubscriptionStatus("")
	if u := middleware.SessionFrom(c).User; u != nil {
		status = u.SubscriptionStatus
	}
	data := h.preferencesData(*saved, status)
	data["Notice"] = msgPreferencesSaved
	render(c, http.StatusOK, "preferences", data)
}

func (f preferencesForm) toDomain() domain.Preferences {
	channel := f.Channel
	if channel == "" {
		channel = "email"
	}
	return domain.Preferences{
		DeliveryTime: f.DeliveryTime,
		Timezone:     f.Timezone,
		Categories:   f.Categories,
		Channel:      channel,
	}
}

func (h *AccountHandler) preferencesData(p domain.Preferences, status domain.SubscriptionStatus) gin.H {
	if status == "" {
		status = domain.SubscriptionNone
	}
	return gin.H{
		"Title":              "Preferences",
		"Preferences":        p,
		"SubscriptionStatus": status,
		"Categories":         Categories,
	}
}

// POST /account/delete
func (h *AccountHandler) Delete(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if err := h.account.DeleteAccount(c.Request.Context(), sess.Token); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "delete account", "error", err)
		renderError(c, http.StatusBadGateway, errUnexpected)
		return
	}
	if err := h.sessions.Clear(c.Request.Context(), c.Writer, sess); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "clear session", "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GET /contact
func (h *AccountHandler) ContactForm(c *gin.Context) {
	form := contactForm{}
	if u := middleware.SessionFrom(c).User; u != nil {
		form.Name, form.Email = u.Name, u.Email
	}
	render(c, http.StatusOK, "contact", gin.H{"Title": "Contact", "Form": form})
}

// POST /contact
func (h *AccountHandler) Contact(c *gin.Context) {
	var form contactForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "contact", gin.H{"Title": "Contact", "Form": form, "Error": validationMessage(err)})
		return
	}

	err := h.account.Contact(c.Request.Context(), backend.ContactMessage{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Message: form.Message,
	})
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "contact", "error", err)
		render(c, http.StatusBadGateway, "contact", gin.H{"Title": "Contact", "Form": form, "Error": errUnexpected})
		return
	}
	render(c, http.StatusOK, "contact", gin.H{"Title": "Contact", "Form": contactForm{}, "Notice": msgContactSent})
}
