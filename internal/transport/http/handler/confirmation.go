package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/transport/http/middleware"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/gin-gonic/gin"
)

type confirmationPoller interface {
	Run(ctx context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult
}

type ConfirmationHandler struct {
	poller confirmationPoller
	logger *slog.Logger
}

func NewConfirmationHandler(poller confirmationPoller, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{poller: poller, logger: logger.With("component", "confirmation_handler")}
}

// GET /payment-success
// Shows what the checkout reported right away; confirmation itself
// streams from Status.
func (h *ConfirmationHandler) Success(c *gin.Context) {
	brand, last4 := c.Query("card_brand"), c.Query("card_last4")
	if card := middleware.SessionFrom(c).Card; card != nil && last4 == "" {
		brand, last4 = card.Brand, card.Last4
	}
	render(c, http.StatusOK, "payment_success", gin.H{
		"Title":         "Payment received",
		"TransactionID": c.Query("transaction_id"),
		"CardBrand":     brand,
		"CardLast4":     last4,
	})
}

// GET /payment-success/status
// Server-Sent Events: one "attempt" per backend call, a "result" with the
// terminal state and, on success, a "redirect". Closing the page cancels
// the request context and with it any pending retry or redirect.
func (h *ConfirmationHandler) Status(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	token := middleware.SessionFrom(c).Token
	res := h.poller.Run(c.Request.Context(), token, func(e usecase.ConfirmEvent) {
		c.SSEvent(string(e.Kind), e)
		c.Writer.Flush()
	})
	h.logger.InfoContext(c.Request.Context(), "confirmation stream closed", "state", res.State)
}
