package handler

import (
	"errors"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// render executes a page template with the fields every layout needs.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	sess := middleware.SessionFrom(c)
	data["Authenticated"] = sess.Authenticated()
	data["User"] = sess.User
	c.HTML(status, name, data)
}

func renderError(c *gin.Context, status int, heading string) {
	render(c, status, "error", gin.H{"Title": heading, "Heading": heading})
}

// validationMessage turns a binding error into the message for the first
// failing field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errInvalidForm
	}
	fe := verrs[0]
	if byTag, ok := fieldMessages[fieldName(fe)]; ok {
		if msg, ok := byTag[fe.Tag()]; ok {
			return msg
		}
	}
	return errInvalidForm
}

// fieldName maps the struct field back to its form key.
func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "Confirm":
		return "confirm"
	case "Name":
		return "name"
	case "Message":
		return "message"
	case "DeliveryTime":
		return "delivery_time"
	case "Timezone":
		return "timezone"
	case "Channel":
		return "channel"
	}
	return ""
}

func NotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, errNotFound)
}
