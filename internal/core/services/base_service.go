package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finex_ledger/internal/middleware"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
)

// BaseService provides common functionality for all services
type BaseService struct {
	uow   portsrepo.UnitOfWork
	clock clock.Clock
}

func newBaseService(uow portsrepo.UnitOfWork, clk clock.Clock) BaseService {
	if clk == nil {
		clk = clock.System{}
	}
	return BaseService{uow: uow, clock: clk}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// expectedErrors are outcomes of a well-formed request that the ledger
// refused. They are logged at Warn; everything else at Error.
var expectedErrors = []error{
	apperrors.ErrNotFound,
	apperrors.ErrValidation,
	apperrors.ErrDuplicate,
	apperrors.ErrCurrencyMismatch,
	apperrors.ErrInsufficientFunds,
	apperrors.ErrSelfTransfer,
	apperrors.ErrOwnershipMismatch,
	apperrors.ErrDuplicateName,
	apperrors.ErrUnknownTransactionType,
	apperrors.ErrAlreadyLinked,
	apperrors.ErrAccountInactive,
	apperrors.ErrInvalidStatusTransition,
	apperrors.ErrConcurrentUpdate,
}

func isExpected(err error) bool {
	for _, target := range expectedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// LogFailure logs a failed operation at a level matching the error kind.
func (s *BaseService) LogFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	if isExpected(err) {
		s.GetLogger(ctx).Warn(msg, args...)
		return
	}
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}
