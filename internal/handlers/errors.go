package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// errorStatuses maps ledger errors to HTTP statuses, checked in order.
var errorStatuses = []struct {
	err    error
	status int
}{
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrValidation, http.StatusBadRequest},
	{apperrors.ErrUnknownTransactionType, http.StatusBadRequest},
	{apperrors.ErrDuplicateName, http.StatusConflict},
	{apperrors.ErrAlreadyLinked, http.StatusConflict},
	{apperrors.ErrDuplicate, http.StatusConflict},
	{apperrors.ErrConcurrentUpdate, http.StatusConflict},
	{apperrors.ErrCurrencyMismatch, http.StatusUnprocessableEntity},
	{apperrors.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{apperrors.ErrSelfTransfer, http.StatusUnprocessableEntity},
	{apperrors.ErrOwnershipMismatch, http.StatusUnprocessableEntity},
	{apperrors.ErrAccountInactive, http.StatusUnprocessableEntity},
	{apperrors.ErrInvalidStatusTransition, http.StatusUnprocessableEntity},
	{apperrors.ErrTransient, http.StatusServiceUnavailable},
}

// statusForError returns the HTTP status for err, 500 when unknown.
func statusForError(err error) int {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the error response. Internal failures hide their
// details behind fallbackMsg.
func respondError(c *gin.Context, err error, fallbackMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusForError(err)

	switch {
	case status == http.StatusInternalServerError:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallbackMsg})
	case status == http.StatusServiceUnavailable:
		logger.Warn(fallbackMsg, slog.String("error", err.Error()))
		c.Header("Retry-After", "1")
		c.JSON(status, gin.H{"error": "Temporarily unavailable, retry the request"})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// bindError reports a malformed request body or query.
func bindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}

// idParam parses a positive int64 path parameter. It writes a 400 and returns
// false when the value is not usable.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}
