package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/triplan/internal/billscan"
	"github.com/mmynk/triplan/internal/itinerary"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/storage"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{&models.ValidationError{Field: "title", Message: "required"}, connect.CodeInvalidArgument},
		{fmt.Errorf("%w: %q", itinerary.ErrInvalidStatus, "Maybe"), connect.CodeInvalidArgument},
		{fmt.Errorf("failed to get project: %w", storage.ErrNotFound), connect.CodeNotFound},
		{itinerary.ErrPermissionDenied, connect.CodePermissionDenied},
		{ErrNotOwner, connect.CodePermissionDenied},
		{ErrPrivate, connect.CodePermissionDenied},
		{storage.ErrConflict, connect.CodeAborted},
		{fmt.Errorf("%w: status 502", billscan.ErrScanFailed), connect.CodeUnavailable},
		{ErrMediaUnavailable, connect.CodeUnavailable},
		{context.Canceled, connect.CodeCanceled},
		{errors.New("disk on fire"), connect.CodeInternal},
		{connect.NewError(connect.CodeFailedPrecondition, errors.New("x")), connect.CodeFailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, connect.CodeOf(toConnectError(tt.err)))
		})
	}

	assert.NoError(t, toConnectError(nil))
}
