package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONErrorHandler is the custom error handler for Echo. Every failure that
// escapes a handler is rendered as the uniform {error} envelope so the
// process answers with JSON instead of Echo's default body.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := ""

	// Check if it's an Echo HTTPError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		}
		if message == "" {
			switch code {
			case http.StatusNotFound:
				message = "The requested resource doesn't exist."
			case http.StatusMethodNotAllowed:
				message = "Method not allowed."
			case http.StatusBadRequest:
				message = "The request could not be processed."
			}
		}
	}
	if message == "" {
		message = "Something went wrong. Please try again later."
	}

	// Log the error
	c.Logger().Error(err)

	if jsonErr := c.JSON(code, map[string]interface{}{"error": message}); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
