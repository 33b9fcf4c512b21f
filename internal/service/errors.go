package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/storage"
)

// toConnectError maps domain errors to connect codes. Unknown errors are internal.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, ledger.ErrInvalidArgument),
		errors.Is(err, calculator.ErrInvalidSplit),
		errors.Is(err, auth.ErrWeakPassword):
		return connect.CodeInvalidArgument
	case errors.Is(err, storage.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, storage.ErrConflict),
		errors.Is(err, auth.ErrEmailExists):
		return connect.CodeAlreadyExists
	case errors.Is(err, ledger.ErrMemberHasHistory),
		errors.Is(err, calculator.ErrImbalance):
		return connect.CodeFailedPrecondition
	case errors.Is(err, calculator.ErrDataIntegrity):
		return connect.CodeDataLoss
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return connect.CodeUnauthenticated
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}
