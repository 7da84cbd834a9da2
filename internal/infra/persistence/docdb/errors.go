package docdb

import (
	domainerrors "userstore/internal/domain/errors"

	"gocloud.dev/gcerrors"
)

// mapReadError converts a docstore read failure into a domain error kind.
func mapReadError(err error, key string) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return domainerrors.ErrNotFound.WithDetails(key)
	}

	return domainerrors.NewStoreError(err, "read "+key)
}

// mapWriteError converts a failed staged write into a domain error kind.
func mapWriteError(op writeOp, err error) error {
	code := gcerrors.Code(err)

	switch op.kind {
	case opCreate:
		if code == gcerrors.AlreadyExists {
			if isLoginKey(op.key) {
				return domainerrors.ErrDuplicateLogin.WithDetails(op.key)
			}

			return domainerrors.ErrDuplicateIdentity.WithDetails(op.key)
		}
	case opReplace, opDelete:
		if code == gcerrors.FailedPrecondition || code == gcerrors.NotFound {
			return domainerrors.ErrConcurrencyConflict.WithDetails(op.key)
		}
	}

	return domainerrors.NewStoreError(err, op.kind.String()+" "+op.key)
}
