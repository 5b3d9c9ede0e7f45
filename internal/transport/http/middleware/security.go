package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Security sets common HTTP security headers on every response. Scripts
// may only come from this origin and the billing provider; there is no
// inline script anywhere in the views.
func Security(checkoutOrigin string) gin.HandlerFunc {
	frames := "'none'"
	if checkoutOrigin != "" {
		frames = checkoutOrigin
	}
	csp := strings.Join([]string{
		"default-src 'self'",
		"img-src 'self' data:",
		"style-src 'self' 'unsafe-inline'",
		strings.TrimSpace("script-src 'self' " + checkoutOrigin),
		"frame-src " + frames,
		strings.TrimSpace("connect-src 'self' " + checkoutOrigin),
	}, "; ")
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		c.Header("Content-Security-Policy", csp)
		c.Next()
	}
}

// CheckoutOrigin turns the widget script URL into a wildcard source for the
// content security policy. The overlay frame is served from a sibling
// host of the script CDN.
func CheckoutOrigin(scriptURL string) string {
	u, err := url.Parse(scriptURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	labels := strings.Split(u.Hostname(), ".")
	if len(labels) < 3 {
		return u.Scheme + "://" + u.Host
	}
	return u.Scheme + "://*." + strings.Join(labels[len(labels)-2:], ".")
}
