package handler

const (
	errUnexpected         = "An unexpected error occurred"
	errInvalidCredentials = "Invalid email or password"
	errEmailTaken         = "An account with this email already exists"
	errResetLinkInvalid   = "This reset link is invalid or has expired"
	errPasswordsDiffer    = "Passwords do not match"
	errInvalidForm        = "Please check the form and try again"
	errCheckoutNotReady   = "Checkout is still loading. Please try again in a moment."
	errCheckoutBroken     = "Checkout could not be loaded. Please reload the page."
	errUnknownPlan        = "Please choose a plan"
	errInvalidEvent       = "Invalid checkout event"
	errNotFound           = "Page not found"

	msgPreferencesSaved = "Your preferences have been saved"
	msgResetSent        = "If an account exists for that address, a reset link is on its way"
	msgPasswordReset    = "Your password has been changed. You can log in now."
	msgContactSent      = "Thanks! We will get back to you soon."
)

// Field messages shown for validation failures, keyed by form field and
// failed rule.
var fieldMessages = map[string]map[string]string{
	"email": {
		"required": "Email is required",
		"email":    "Enter a valid email address",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 8 characters",
	},
	"confirm": {
		"required": "Please confirm your password",
	},
	"name": {
		"required": "Name is required",
		"max":      "Name is too long",
	},
	"message": {
		"required": "Message is required",
		"max":      "Message is too long",
	},
	"delivery_time": {
		"required": "Delivery time is required",
		"datetime": "Delivery time must look like 08:00",
	},
	"timezone": {
		"required": "Timezone is required",
		"timezone": "Unknown timezone",
	},
	"channel": {
		"oneof": "Choose email or SMS",
	},
}
