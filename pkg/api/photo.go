package api

// UploadPhotoRequest adds an image to the project gallery. Data is raw bytes
// (base64 in JSON).
type UploadPhotoRequest struct {
	ProjectID string `json:"project_id"`
	Filename  string `json:"filename"`
	Data      []byte `json:"data"`
}

type UploadPhotoResponse struct {
	Photo *Photo `json:"photo"`
}

type ListPhotosRequest struct {
	ProjectID string `json:"project_id"`
}

type ListPhotosResponse struct {
	Photos []*Photo `json:"photos"`
}
