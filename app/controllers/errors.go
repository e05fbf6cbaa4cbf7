package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/internal/pkg/billing"
	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"github.com/ManuelReschke/TaskFox/internal/pkg/plans"
	"github.com/ManuelReschke/TaskFox/internal/pkg/teams"
	"github.com/ManuelReschke/TaskFox/internal/pkg/validation"
)

// Stable error codes returned in the "error" field of every failed response.
const (
	CodeValidation      = "validation_error"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeBadRequest      = "bad_request"
	CodeForbidden       = "forbidden"
	CodeLimitReached    = "limit_reached"
	CodeUnauthorized    = "unauthorized"
	CodeInvalidSig      = "invalid_signature"
	CodeExternalService = "external_service_error"
	CodeInternal        = "internal_server_error"
)

var (
	ErrLimitReached       = errors.New("your plan limit has been reached")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrBadRequest         = errors.New("malformed request")
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

// classify maps a domain error onto an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrLimitReached):
		return fiber.StatusForbidden, CodeLimitReached
	case errors.Is(err, teams.ErrForbidden):
		return fiber.StatusForbidden, CodeForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, billing.ErrInvalidSignature):
		return fiber.StatusBadRequest, CodeInvalidSig

	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, billing.ErrUserNotFound),
		errors.Is(err, billing.ErrPlanNotFound),
		errors.Is(err, billing.ErrSubscriptionNotFound),
		errors.Is(err, plans.ErrNotFound),
		errors.Is(err, teams.ErrTeamNotFound),
		errors.Is(err, teams.ErrNotMember):
		return fiber.StatusNotFound, CodeNotFound

	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrPlanSlugTaken),
		errors.Is(err, billing.ErrAlreadySubscribed),
		errors.Is(err, billing.ErrNotCancelled),
		errors.Is(err, teams.ErrAlreadyMember),
		errors.Is(err, teams.ErrCannotRemoveOwner),
		errors.Is(err, teams.ErrCannotChangeOwnerRole):
		return fiber.StatusConflict, CodeConflict

	case errors.Is(err, ErrBadRequest),
		errors.Is(err, billing.ErrPlanNotPurchasable),
		errors.Is(err, billing.ErrMalformedEvent),
		errors.Is(err, teams.ErrInvalidRole),
		errors.Is(err, models.ErrInvalidPlanPrice),
		errors.Is(err, models.ErrInvalidPlanInterval),
		errors.Is(err, models.ErrInvalidPlanLimit):
		return fiber.StatusBadRequest, CodeBadRequest

	case errors.Is(err, billing.ErrSubscriptionCreateFailed),
		errors.Is(err, billing.ErrSubscriptionCancelFailed),
		errors.Is(err, billing.ErrSubscriptionReactivateFailed),
		errors.Is(err, billing.ErrProviderNotConfigured):
		return fiber.StatusBadGateway, CodeExternalService
	}
	return fiber.StatusInternalServerError, CodeInternal
}

// respondError writes the structured error body for err. Internal errors are
// logged and replaced by a generic message.
func respondError(c *fiber.Ctx, err error) error {
	if verrs, ok := validation.As(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   CodeValidation,
			Message: "The given data was invalid",
			Errors:  verrs,
		})
	}

	status, code := classify(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		logging.Component("api").WithError(err).WithFields(map[string]any{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		msg = "Something went wrong, please try again later"
	}
	return c.Status(status).JSON(ErrorResponse{Error: code, Message: msg})
}
