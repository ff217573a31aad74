package service

import (
	"bytes"
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/internal/objectstore"
	"github.com/mmynk/triplan/internal/storage"
	"github.com/mmynk/triplan/pkg/api"
)

const galleryPrefix = "gallery"

// PhotoService implements the PhotoService RPC interface. Photos live only
// in object storage under gallery/<project id>/.
type PhotoService struct {
	access *Access
	media  objectstore.Store
}

// NewPhotoService creates a photo service. media may be nil, in which case
// every call fails with Unavailable.
func NewPhotoService(projects storage.ProjectStore, media objectstore.Store) *PhotoService {
	return &PhotoService{access: NewAccess(projects), media: media}
}

// UploadPhoto adds an image to the project gallery. Uploading the same
// name twice replaces the first file.
func (s *PhotoService) UploadPhoto(ctx context.Context, req *connect.Request[api.UploadPhotoRequest]) (*connect.Response[api.UploadPhotoResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UploadPhoto request received", "project_id", req.Msg.ProjectID, "filename", req.Msg.Filename, "bytes", len(req.Msg.Data))

	if len(req.Msg.Data) == 0 {
		return nil, invalidArgument("data", "This field is required")
	}
	if _, err := s.access.Member(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}
	if s.media == nil {
		return nil, toConnectError(ErrMediaUnavailable)
	}

	name := objectstore.SanitizeName(req.Msg.Filename)
	url, err := s.media.Put(ctx, objectstore.Key(galleryPrefix, req.Msg.ProjectID, name), bytes.NewReader(req.Msg.Data))
	if err != nil {
		slog.Error("UploadPhoto failed", "project_id", req.Msg.ProjectID, "error", err)
		return nil, toConnectError(mediaError(err))
	}

	return connect.NewResponse(&api.UploadPhotoResponse{Photo: &api.Photo{Name: name, URL: url}}), nil
}

// ListPhotos lists the project gallery sorted by name.
func (s *PhotoService) ListPhotos(ctx context.Context, req *connect.Request[api.ListPhotosRequest]) (*connect.Response[api.ListPhotosResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.View(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}
	if s.media == nil {
		return nil, toConnectError(ErrMediaUnavailable)
	}

	objects, err := s.media.List(ctx, objectstore.Key(galleryPrefix, req.Msg.ProjectID))
	if err != nil {
		return nil, toConnectError(mediaError(err))
	}
	photos := make([]*api.Photo, len(objects))
	for i, o := range objects {
		photos[i] = &api.Photo{Name: o.Name, URL: o.URL}
	}
	return connect.NewResponse(&api.ListPhotosResponse{Photos: photos}), nil
}
