package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"coworking-reservation-server/internal/repository"
	"coworking-reservation-server/internal/service"
	"coworking-reservation-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// writeServiceError maps service errors onto HTTP statuses. Anything it does
// not recognise is logged and reported as a 500 without leaking details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *service.FieldError
	switch {
	case errors.As(err, &fieldErr):
		response.BadRequest(w, fieldErr.Error())
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidWorkspace),
		errors.Is(err, service.ErrInvalidPassword):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrWorkspaceNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrWorkspaceUnavailable),
		errors.Is(err, service.ErrEmailTaken):
		response.Conflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(w, err.Error())
	case errors.Is(err, repository.ErrStorage):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("storage unavailable")
		response.ServiceUnavailable(w, "Storage temporarily unavailable")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
		response.InternalError(w, "Internal server error")
	}
}

var validate = validator.New()

// decode reads a JSON body into dst and runs struct validation on it. It
// writes the 400 itself and reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		response.BadRequest(w, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "email":
		return fe.Field() + " must be a valid email"
	default:
		return fe.Field() + " is invalid"
	}
}
