package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/pkg/api"
)

// ProjectServiceName is the fully-qualified service name. The service manages trips and who can see them.
const ProjectServiceName = "triplan.v1.ProjectService"

// Procedure paths, used for routing and in interceptors.
const (
	ProjectServiceCreateProjectProcedure    = "/triplan.v1.ProjectService/CreateProject"
	ProjectServiceGetProjectProcedure       = "/triplan.v1.ProjectService/GetProject"
	ProjectServiceListProjectsProcedure     = "/triplan.v1.ProjectService/ListProjects"
	ProjectServiceUpdateProjectProcedure    = "/triplan.v1.ProjectService/UpdateProject"
	ProjectServiceDeleteProjectProcedure    = "/triplan.v1.ProjectService/DeleteProject"
	ProjectServiceJoinProjectProcedure      = "/triplan.v1.ProjectService/JoinProject"
	ProjectServiceCloneProjectProcedure     = "/triplan.v1.ProjectService/CloneProject"
	ProjectServiceUploadCoverImageProcedure = "/triplan.v1.ProjectService/UploadCoverImage"
)

// ProjectServiceHandler is implemented by the server.
type ProjectServiceHandler interface {
	CreateProject(context.Context, *connect.Request[api.CreateProjectRequest]) (*connect.Response[api.CreateProjectResponse], error)
	GetProject(context.Context, *connect.Request[api.GetProjectRequest]) (*connect.Response[api.GetProjectResponse], error)
	ListProjects(context.Context, *connect.Request[api.ListProjectsRequest]) (*connect.Response[api.ListProjectsResponse], error)
	UpdateProject(context.Context, *connect.Request[api.UpdateProjectRequest]) (*connect.Response[api.UpdateProjectResponse], error)
	DeleteProject(context.Context, *connect.Request[api.DeleteProjectRequest]) (*connect.Response[api.DeleteProjectResponse], error)
	JoinProject(context.Context, *connect.Request[api.JoinProjectRequest]) (*connect.Response[api.JoinProjectResponse], error)
	CloneProject(context.Context, *connect.Request[api.CloneProjectRequest]) (*connect.Response[api.CloneProjectResponse], error)
	UploadCoverImage(context.Context, *connect.Request[api.UploadCoverImageRequest]) (*connect.Response[api.UploadCoverImageResponse], error)
}

// NewProjectServiceHandler builds an HTTP handler for svc. Mount it at the returned path.
func NewProjectServiceHandler(svc ProjectServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/triplan.v1.ProjectService/", routes{
		ProjectServiceCreateProjectProcedure:    connect.NewUnaryHandler(ProjectServiceCreateProjectProcedure, svc.CreateProject, opts...),
		ProjectServiceGetProjectProcedure:       connect.NewUnaryHandler(ProjectServiceGetProjectProcedure, svc.GetProject, opts...),
		ProjectServiceListProjectsProcedure:     connect.NewUnaryHandler(ProjectServiceListProjectsProcedure, svc.ListProjects, opts...),
		ProjectServiceUpdateProjectProcedure:    connect.NewUnaryHandler(ProjectServiceUpdateProjectProcedure, svc.UpdateProject, opts...),
		ProjectServiceDeleteProjectProcedure:    connect.NewUnaryHandler(ProjectServiceDeleteProjectProcedure, svc.DeleteProject, opts...),
		ProjectServiceJoinProjectProcedure:      connect.NewUnaryHandler(ProjectServiceJoinProjectProcedure, svc.JoinProject, opts...),
		ProjectServiceCloneProjectProcedure:     connect.NewUnaryHandler(ProjectServiceCloneProjectProcedure, svc.CloneProject, opts...),
		ProjectServiceUploadCoverImageProcedure: connect.NewUnaryHandler(ProjectServiceUploadCoverImageProcedure, svc.UploadCoverImage, opts...),
	}
}

// ProjectServiceClient calls a remote ProjectService.
type ProjectServiceClient interface {
	CreateProject(context.Context, *connect.Request[api.CreateProjectRequest]) (*connect.Response[api.CreateProjectResponse], error)
	GetProject(context.Context, *connect.Request[api.GetProjectRequest]) (*connect.Response[api.GetProjectResponse], error)
	ListProjects(context.Context, *connect.Request[api.ListProjectsRequest]) (*connect.Response[api.ListProjectsResponse], error)
	UpdateProject(context.Context, *connect.Request[api.UpdateProjectRequest]) (*connect.Response[api.UpdateProjectResponse], error)
	DeleteProject(context.Context, *connect.Request[api.DeleteProjectRequest]) (*connect.Response[api.DeleteProjectResponse], error)
	JoinProject(context.Context, *connect.Request[api.JoinProjectRequest]) (*connect.Response[api.JoinProjectResponse], error)
	CloneProject(context.Context, *connect.Request[api.CloneProjectRequest]) (*connect.Response[api.CloneProjectResponse], error)
	UploadCoverImage(context.Context, *connect.Request[api.UploadCoverImageRequest]) (*connect.Response[api.UploadCoverImageResponse], error)
}

// NewProjectServiceClient creates a client for the server at baseURL.
func NewProjectServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ProjectServiceClient {
	opts = clientOptions(opts)
	return &projectServiceClient{
		createProject:    connect.NewClient[api.CreateProjectRequest, api.CreateProjectResponse](httpClient, baseURL+ProjectServiceCreateProjectProcedure, opts...),
		getProject:       connect.NewClient[api.GetProjectRequest, api.GetProjectResponse](httpClient, baseURL+ProjectServiceGetProjectProcedure, opts...),
		listProjects:     connect.NewClient[api.ListProjectsRequest, api.ListProjectsResponse](httpClient, baseURL+ProjectServiceListProjectsProcedure, opts...),
		updateProject:    connect.NewClient[api.UpdateProjectRequest, api.UpdateProjectResponse](httpClient, baseURL+ProjectServiceUpdateProjectProcedure, opts...),
		deleteProject:    connect.NewClient[api.DeleteProjectRequest, api.DeleteProjectResponse](httpClient, baseURL+ProjectServiceDeleteProjectProcedure, opts...),
		joinProject:      connect.NewClient[api.JoinProjectRequest, api.JoinProjectResponse](httpClient, baseURL+ProjectServiceJoinProjectProcedure, opts...),
		cloneProject:     connect.NewClient[api.CloneProjectRequest, api.CloneProjectResponse](httpClient, baseURL+ProjectServiceCloneProjectProcedure, opts...),
		uploadCoverImage: connect.NewClient[api.UploadCoverImageRequest, api.UploadCoverImageResponse](httpClient, baseURL+ProjectServiceUploadCoverImageProcedure, opts...),
	}
}

type projectServiceClient struct {
	createProject    *connect.Client[api.CreateProjectRequest, api.CreateProjectResponse]
	getProject       *connect.Client[api.GetProjectRequest, api.GetProjectResponse]
	listProjects     *connect.Client[api.ListProjectsRequest, api.ListProjectsResponse]
	updateProject    *connect.Client[api.UpdateProjectRequest, api.UpdateProjectResponse]
	deleteProject    *connect.Client[api.DeleteProjectRequest, api.DeleteProjectResponse]
	joinProject      *connect.Client[api.JoinProjectRequest, api.JoinProjectResponse]
	cloneProject     *connect.Client[api.CloneProjectRequest, api.CloneProjectResponse]
	uploadCoverImage *connect.Client[api.UploadCoverImageRequest, api.UploadCoverImageResponse]
}

func (c *projectServiceClient) CreateProject(ctx context.Context, req *connect.Request[api.CreateProjectRequest]) (*connect.Response[api.CreateProjectResponse], error) {
	return c.createProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) GetProject(ctx context.Context, req *connect.Request[api.GetProjectRequest]) (*connect.Response[api.GetProjectResponse], error) {
	return c.getProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) ListProjects(ctx context.Context, req *connect.Request[api.ListProjectsRequest]) (*connect.Response[api.ListProjectsResponse], error) {
	return c.listProjects.CallUnary(ctx, req)
}

func (c *projectServiceClient) UpdateProject(ctx context.Context, req *connect.Request[api.UpdateProjectRequest]) (*connect.Response[api.UpdateProjectResponse], error) {
	return c.updateProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) DeleteProject(ctx context.Context, req *connect.Request[api.DeleteProjectRequest]) (*connect.Response[api.DeleteProjectResponse], error) {
	return c.deleteProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) JoinProject(ctx context.Context, req *connect.Request[api.JoinProjectRequest]) (*connect.Response[api.JoinProjectResponse], error) {
	return c.joinProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) CloneProject(ctx context.Context, req *connect.Request[api.CloneProjectRequest]) (*connect.Response[api.CloneProjectResponse], error) {
	return c.cloneProject.CallUnary(ctx, req)
}

func (c *projectServiceClient) UploadCoverImage(ctx context.Context, req *connect.Request[api.UploadCoverImageRequest]) (*connect.Response[api.UploadCoverImageResponse], error) {
	return c.uploadCoverImage.CallUnary(ctx, req)
}
