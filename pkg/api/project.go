package api

type CreateProjectRequest struct {
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	// Private defaults to true when omitted.
	Private   *bool  `json:"private,omitempty"`
	ImageLink string `json:"image_link"`
	// CollaboratorEmails must belong to registered users.
	CollaboratorEmails []string `json:"collaborator_emails"`
}

type CreateProjectResponse struct {
	Project *Project `json:"project"`
}

type GetProjectRequest struct {
	ProjectID string `json:"project_id"`
}

type GetProjectResponse struct {
	Project *Project `json:"project"`
}

type ListProjectsRequest struct{}

// ListProjectsResponse splits visible projects the way the dashboard shows them.
type ListProjectsResponse struct {
	Owned         []*Project `json:"owned"`
	Collaborating []*Project `json:"collaborating"`
	Public        []*Project `json:"public"`
}

// UpdateProjectRequest replaces every editable field. An empty Status and a
// nil Private keep the current values.
type UpdateProjectRequest struct {
	ProjectID          string   `json:"project_id"`
	Title              string   `json:"title"`
	Destination        string   `json:"destination"`
	Description        string   `json:"description"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	Status             string   `json:"status"`
	Private            *bool    `json:"private,omitempty"`
	ImageLink          string   `json:"image_link"`
	CollaboratorEmails []string `json:"collaborator_emails"`
}

type UpdateProjectResponse struct {
	Project *Project `json:"project"`
}

type DeleteProjectRequest struct {
	ProjectID string `json:"project_id"`
}

type DeleteProjectResponse struct{}

type JoinProjectRequest struct {
	ProjectID string `json:"project_id"`
}

type JoinProjectResponse struct {
	Project *Project `json:"project"`
}

type CloneProjectRequest struct {
	ProjectID string `json:"project_id"`
}

type CloneProjectResponse struct {
	Project     *Project `json:"project"`
	ItemsCopied int      `json:"items_copied"`
}

// UploadCoverImageRequest sets the project's cover image. Data is the raw
// image (base64 in JSON).
type UploadCoverImageRequest struct {
	ProjectID string `json:"project_id"`
	Filename  string `json:"filename"`
	Data      []byte `json:"data"`
}

type UploadCoverImageResponse struct {
	Project *Project `json:"project"`
}
