package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/internal/auth"
	"github.com/mmynk/triplan/internal/billscan"
	"github.com/mmynk/triplan/internal/itinerary"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/objectstore"
	"github.com/mmynk/triplan/internal/storage"
)

var (
	ErrNotMember  = errors.New("you must be a member of this project")
	ErrNotOwner   = errors.New("only the project owner can do this")
	ErrNotCreator = errors.New("only the member who added this can change it")
	ErrPrivate    = errors.New("this project is private")

	// ErrMediaUnavailable wraps object storage failures.
	ErrMediaUnavailable = errors.New("media storage unavailable")

	// ErrScanDisabled is returned by ScanBill when no bill-scan service is configured.
	ErrScanDisabled = errors.New("bill scanning is not configured")
)

// toConnectError maps domain errors onto Connect codes. Errors that are
// already Connect errors pass through unchanged.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, itinerary.ErrInvalidStatus),
		errors.Is(err, objectstore.ErrInvalidPath):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, itinerary.ErrPermissionDenied),
		errors.Is(err, ErrNotMember),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrNotCreator),
		errors.Is(err, ErrPrivate):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, billscan.ErrScanFailed),
		errors.Is(err, ErrMediaUnavailable),
		errors.Is(err, ErrScanDisabled):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	slog.Error("Unexpected service error", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}

func invalidArgument(field, message string) error {
	return connect.NewError(connect.CodeInvalidArgument, &models.ValidationError{Field: field, Message: message})
}
