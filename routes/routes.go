package routes

import (
	"errors"

	"rentline-server/realtime"
	"rentline-server/services"
	"rentline-server/utils"

	"github.com/kataras/iris/v12"
)

// Service handles are constructed in main and injected here; handlers stay
// free functions in the router's style while the services themselves carry
// no ambient state.
var (
	applications *services.ApplicationService
	messaging    *services.MessagingService
	contacts     *services.ContactsService
	refresher    realtime.Subscriber
)

func InitServices(
	apps *services.ApplicationService,
	msgs *services.MessagingService,
	cts *services.ContactsService,
	sub realtime.Subscriber,
) {
	applications = apps
	messaging = msgs
	contacts = cts
	refresher = sub
}

// handleServiceError maps domain error kinds to HTTP statuses; anything
// unrecognized is a store failure
func handleServiceError(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		utils.JSONError(ctx, iris.StatusUnauthorized, "unauthenticated", "Sign in to continue.")
	case errors.Is(err, services.ErrUnauthorized):
		utils.JSONError(ctx, iris.StatusForbidden, "unauthorized", "You are not allowed to perform this action.")
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Record not found.")
	case errors.Is(err, services.ErrDuplicateApplication):
		utils.JSONError(ctx, iris.StatusConflict, "duplicate_application", "An application for this property already exists.")
	case errors.Is(err, services.ErrInvalidTransition):
		utils.JSONError(ctx, iris.StatusConflict, "invalid_transition", "This application has already been decided.")
	case errors.Is(err, services.ErrValidation):
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", err.Error())
	default:
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
	}
}
