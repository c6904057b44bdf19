package service

import (
	"errors"
	"net/http"

	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// mapSLAError turns business-calendar failures into client errors and hands
// everything else to the generic mapping.
func mapSLAError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sla.ErrInvalidRange):
		return &apperrors.DomainError{
			Code:       "INVALID_TIME_RANGE",
			Message:    "end must not be before start",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
		}
	case errors.Is(err, sla.ErrNoBusinessTime):
		return &apperrors.DomainError{
			Code:       "NO_BUSINESS_TIME",
			Message:    "no business hours available to schedule a deadline",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        err,
		}
	}
	return apperrors.MapError(err)
}
