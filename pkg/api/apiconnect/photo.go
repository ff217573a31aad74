package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/pkg/api"
)

// PhotoServiceName is the fully-qualified service name. The service is the per-project photo gallery.
const PhotoServiceName = "triplan.v1.PhotoService"

// Procedure paths, used for routing and in interceptors.
const (
	PhotoServiceUploadPhotoProcedure = "/triplan.v1.PhotoService/UploadPhoto"
	PhotoServiceListPhotosProcedure  = "/triplan.v1.PhotoService/ListPhotos"
)

// PhotoServiceHandler is implemented by the server.
type PhotoServiceHandler interface {
	UploadPhoto(context.Context, *connect.Request[api.UploadPhotoRequest]) (*connect.Response[api.UploadPhotoResponse], error)
	ListPhotos(context.Context, *connect.Request[api.ListPhotosRequest]) (*connect.Response[api.ListPhotosResponse], error)
}

// NewPhotoServiceHandler builds an HTTP handler for svc. Mount it at the returned path.
func NewPhotoServiceHandler(svc PhotoServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/triplan.v1.PhotoService/", routes{
		PhotoServiceUploadPhotoProcedure: connect.NewUnaryHandler(PhotoServiceUploadPhotoProcedure, svc.UploadPhoto, opts...),
		PhotoServiceListPhotosProcedure:  connect.NewUnaryHandler(PhotoServiceListPhotosProcedure, svc.ListPhotos, opts...),
	}
}

// PhotoServiceClient calls a remote PhotoService.
type PhotoServiceClient interface {
	UploadPhoto(context.Context, *connect.Request[api.UploadPhotoRequest]) (*connect.Response[api.UploadPhotoResponse], error)
	ListPhotos(context.Context, *connect.Request[api.ListPhotosRequest]) (*connect.Response[api.ListPhotosResponse], error)
}

// NewPhotoServiceClient creates a client for the server at baseURL.
func NewPhotoServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PhotoServiceClient {
	opts = clientOptions(opts)
	return &photoServiceClient{
		uploadPhoto: connect.NewClient[api.UploadPhotoRequest, api.UploadPhotoResponse](httpClient, baseURL+PhotoServiceUploadPhotoProcedure, opts...),
		listPhotos:  connect.NewClient[api.ListPhotosRequest, api.ListPhotosResponse](httpClient, baseURL+PhotoServiceListPhotosProcedure, opts...),
	}
}

type photoServiceClient struct {
	uploadPhoto *connect.Client[api.UploadPhotoRequest, api.UploadPhotoResponse]
	listPhotos  *connect.Client[api.ListPhotosRequest, api.ListPhotosResponse]
}

func (c *photoServiceClient) UploadPhoto(ctx context.Context, req *connect.Request[api.UploadPhotoRequest]) (*connect.Response[api.UploadPhotoResponse], error) {
	return c.uploadPhoto.CallUnary(ctx, req)
}

func (c *photoServiceClient) ListPhotos(ctx context.Context, req *connect.Request[api.ListPhotosRequest]) (*connect.Response[api.ListPhotosResponse], error) {
	return c.listPhotos.CallUnary(ctx, req)
}
