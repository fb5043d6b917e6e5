package api

import (
	"errors"
	"net/http"

	"bookstore/pkg/apperrors"
	"bookstore/pkg/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps workflow failures onto HTTP statuses. Anything outside the
// client-facing taxonomy is logged and answered with a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		emptyField      *apperrors.EmptyFieldError
		unexpectedField *apperrors.UnexpectedFieldError
		invalidRange    *apperrors.InvalidDoubleRangeError
		notFound        *apperrors.EntityNotFoundError
		duplicate       *apperrors.DuplicateObjectError
	)
	switch {
	case errors.As(err, &emptyField), errors.As(err, &unexpectedField), errors.As(err, &invalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "the service is temporarily unavailable"})
	default:
		h.logger.Error("Internal server error",
			zap.Error(err),
			zap.String("request_method", c.Request.Method),
			zap.String("request_url", c.Request.URL.String()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "the server encountered a problem and could not process your request"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
}
