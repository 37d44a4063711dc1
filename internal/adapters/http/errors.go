package http

import "github.com/gofiber/fiber/v2"

// APIError is a structured error response. Messages never carry internal
// details such as upstream URLs or stack traces.
type APIError struct {
	Error     string `json:"error"`
	Code      string `json:"code"` // bad_request, internal_error, ...
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Error:     message,
		Code:      code,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// ErrorHandler renders errors returned by handlers and middleware (timeouts,
// rate limits, unknown routes) in the same shape as handler errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal_error"
	msg := "internal server error"
	if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
		msg = fe.Message
		switch status {
		case fiber.StatusNotFound:
			code = "not_found"
		case fiber.StatusRequestTimeout:
			code = "timeout"
		case fiber.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case fiber.StatusRequestEntityTooLarge:
			code = "payload_too_large"
		default:
			if status < 500 {
				code = "bad_request"
			}
		}
	}
	return newError(c, status, code, msg)
}
