package rpc

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/familywallet/internal/auth"
	"github.com/mmynk/familywallet/internal/ledger"
	"github.com/mmynk/familywallet/internal/storage"
)

// ErrorReasonHeader carries a machine-readable reason next to the Connect code.
const ErrorReasonHeader = "Wallet-Error"

// Error reasons sent in ErrorReasonHeader.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
	ReasonNotFound        = "not_found"
	ReasonInvalidInput    = "invalid_input"
	ReasonNothingToUndo   = "nothing_to_undo"
	ReasonNothingToRedo   = "nothing_to_redo"
	ReasonConflict        = "conflict"
	ReasonInternal        = "internal"
)

var errInternal = errors.New("internal server error")

// Error converts a domain error into a Connect error with a reason header.
// Unclassified errors are logged and reported as internal without details.
func Error(err error) error {
	if err == nil {
		return nil
	}

	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}

	code, reason := classify(err)
	if code == connect.CodeInternal {
		slog.Error("Internal error", "error", err)
		err = errInternal
	}

	cerr = connect.NewError(code, err)
	cerr.Meta().Set(ErrorReasonHeader, reason)
	return cerr
}

func classify(err error) (connect.Code, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return connect.CodeUnauthenticated, ReasonUnauthenticated
	case errors.Is(err, auth.ErrForbidden):
		return connect.CodePermissionDenied, ReasonForbidden
	case errors.Is(err, storage.ErrNotFound):
		return connect.CodeNotFound, ReasonNotFound
	case errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrWeakPassword):
		return connect.CodeInvalidArgument, ReasonInvalidInput
	case errors.Is(err, ledger.ErrNothingToUndo):
		return connect.CodeFailedPrecondition, ReasonNothingToUndo
	case errors.Is(err, ledger.ErrNothingToRedo):
		return connect.CodeFailedPrecondition, ReasonNothingToRedo
	case errors.Is(err, storage.ErrConflict),
		errors.Is(err, auth.ErrUsernameTaken):
		return connect.CodeAlreadyExists, ReasonConflict
	default:
		return connect.CodeInternal, ReasonInternal
	}
}

// Reason extracts the reason header from an error returned by a client.
func Reason(err error) string {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr.Meta().Get(ErrorReasonHeader)
	}
	return ""
}
