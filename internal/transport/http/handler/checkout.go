package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/content"
	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type checkoutBridge interface {
	Status() (ready bool, err error)
	OpenCheckout(ctx context.Context, priceID string, user *domain.User) (*domain.CheckoutLaunch, error)
	HandleEvent(ctx context.Context, sess *domain.Session, evt domain.CheckoutEvent) (string, error)
}

type checkoutInfoer interface {
	CheckoutInfo(ctx context.Context, token string) (*backend.CheckoutInfo, error)
}

// CheckoutWidget is what the payment page needs to load and initialize
// the provider script once per page view. The client token is public.
type CheckoutWidget struct {
	ScriptURL   string
	ClientToken string
	Environment string
}

type CheckoutHandler struct {
	bridge  checkoutBridge
	info    checkoutInfoer
	catalog *content.Catalog
	widget  CheckoutWidget
	logger  *slog.Logger
}

func NewCheckoutHandler(bridge checkoutBridge, info checkoutInfoer, catalog *content.Catalog, widget CheckoutWidget, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		bridge:  bridge,
		info:    info,
		catalog: catalog,
		widget:  widget,
		logger:  logger.With("component", "checkout_handler"),
	}
}

// GET /payment
// A failed bridge is shown as a blocking message; the page has to be
// reloaded once the widget is back.
func (h *CheckoutHandler) Payment(c *gin.Context) {
	ready, initErr := h.bridge.Status()
	data := gin.H{
		"Title":         "Payment",
		"Plans":         h.catalog.Plans,
		"Ready":         ready,
		"ScriptURL":     h.widget.ScriptURL,
		"ClientToken":   h.widget.ClientToken,
		"Environment":   h.widget.Environment,
		"LoadError":     errCheckoutBroken,
		"SelectedPrice": h.selectedPrice(c),
	}
	if initErr != nil {
		data["BridgeError"] = errCheckoutBroken
	}
	render(c, http.StatusOK, "payment", data)
}

// selectedPrice prefers the price the backend assigned to this user and
// falls back to the catalog's featured plan.
func (h *CheckoutHandler) selectedPrice(c *gin.Context) string {
	info, err := h.info.CheckoutInfo(c.Request.Context(), middleware.SessionFrom(c).Token)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "checkout info", "error", err)
	} else if _, ok := h.catalog.PlanByPriceID(info.PriceID); ok {
		return info.PriceID
	}
	if plan, ok := h.catalog.DefaultPlan(); ok {
		return plan.PriceID
	}
	return ""
}

type openCheckoutRequest struct {
	PriceID string `json:"priceId" binding:"required"`
}

// POST /checkout/open
// Returns the launch options the page hands to Paddle.Checkout.open. The
// page has already initialized the script on load.
func (h *CheckoutHandler) Open(c *gin.Context) {
	var req openCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUnknownPlan})
		return
	}

	launch, err := h.bridge.OpenCheckout(c.Request.Context(), req.PriceID, middleware.SessionFrom(c).User)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": errUnknownPlan})
		case errors.Is(err, domain.ErrBridgeNotReady):
			msg := errCheckoutNotReady
			if _, initErr := h.bridge.Status(); initErr != nil {
				msg = errCheckoutBroken
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": msg})
		default:
			h.logger.ErrorContext(c.Request.Context(), "open checkout", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errUnexpected})
		}
		return
	}
	c.JSON(http.StatusOK, launch)
}

// POST /checkout/events
// Receives the widget's event callback. Answers with the path to navigate
// to, or an empty redirect when nothing should happen.
func (h *CheckoutHandler) Events(c *gin.Context) {
	var evt domain.CheckoutEvent
	if err := c.ShouldBindJSON(&evt); err != nil || evt.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEvent})
		return
	}

	path, err := h.bridge.HandleEvent(c.Request.Context(), middleware.SessionFrom(c), evt)
	if err != nil {
		// Only a gone client ends up here; there is nobody to answer.
		h.logger.InfoContext(c.Request.Context(), "checkout event abandoned", "error", err)
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": path})
}
