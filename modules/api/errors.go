package api

import (
	"log"

	"github.com/example/task-tracker/domain/apperror"
	"github.com/gofiber/fiber/v2"
)

const (
	unauthorizedError   = "unauthorized"
	unauthorizedMessage = "Invalid or missing credentials"
)

// unauthorized writes the single response used for every token failure,
// so a client cannot tell a missing token from an expired or forged one.
func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   unauthorizedError,
		Message: unauthorizedMessage,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// respondError maps an error kind to its status. Expected outcomes are not
// logged; storage and unclassified failures are.
func respondError(c *fiber.Ctx, err error) error {
	switch kind := apperror.KindOf(err); kind {
	case apperror.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   kind.String(),
			Message: apperror.Reason(err),
		})
	case apperror.KindEmailTaken:
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   kind.String(),
			Message: "Email already registered",
		})
	case apperror.KindInvalidCredentials:
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   kind.String(),
			Message: "Invalid email or password",
		})
	case apperror.KindUnauthenticated:
		return unauthorized(c)
	case apperror.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   kind.String(),
			Message: "Resource not found",
		})
	case apperror.KindTransientStorage:
		log.Printf("[api] Storage unavailable on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "service_unavailable",
			Message: "Storage temporarily unavailable, please retry",
		})
	default:
		log.Printf("[api] Internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// customErrorHandler handles errors returned by Fiber itself, such as
// unknown routes and oversized bodies.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else {
		log.Printf("[api] Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
