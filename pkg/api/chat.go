package api

type SendMessageRequest struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message"`
}

type SendMessageResponse struct {
	Message *ChatMessage `json:"message"`
}

type ListMessagesRequest struct {
	ProjectID string `json:"project_id"`
}

type ListMessagesResponse struct {
	Messages []*ChatMessage `json:"messages"`
}
