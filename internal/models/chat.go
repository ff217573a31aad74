package models

// ChatMessage is one line of a project's chat. Messages are append-only and
// ordered by CreatedAt.
type ChatMessage struct {
	ID        string
	ProjectID string

	// User is the sender's email, as displayed next to the message.
	User string

	Message string

	// CreatedAt is the Unix timestamp (milliseconds) when the message was sent.
	CreatedAt int64
}

// Photo is a gallery image stored in object storage.
type Photo struct {
	Name string
	URL  string
}
