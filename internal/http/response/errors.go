package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/ctxutil"
	"github.com/crediflow/los-backend/internal/qr"
	"github.com/crediflow/los-backend/internal/validation"
)

// RespondMappedError translates service errors into HTTP responses.
// Validation failures carry their field errors; everything unexpected
// collapses to a generic 500 with the trace id, never internals.
func RespondMappedError(c *gin.Context, err error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{
			Error: APIError{
				Message: "validation failed",
				Code:    "validation_failed",
				Details: validationErr.Fields,
			},
		})
		return
	}
	var decodeErr *qr.DecodeError
	if errors.As(err, &decodeErr) {
		RespondError(c, http.StatusUnprocessableEntity, "qr_decode_failed", err)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperrors.ErrInvalidState):
		RespondError(c, http.StatusConflict, "invalid_state", err)
	case errors.Is(err, apperrors.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict_retryable", err)
	default:
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{
			Error: APIError{
				Message: "internal error",
				Code:    "internal_error",
				TraceID: ctxutil.TraceID(c.Request.Context()),
			},
		})
	}
}
