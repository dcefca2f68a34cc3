package types

// PubSubMessage is the payload of a Pub/Sub event via Cloud Event.
type PubSubMessage struct {
	Message struct {
		Data []byte `json:"data"`
	} `json:"message"`
}

// TakeoutUploadedEvent is published by the API when an archive lands in GCS.
type TakeoutUploadedEvent struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	RunID    string `json:"run_id"`
	Bucket   string `json:"bucket"`
	Object   string `json:"object"`
}

// ProfileUpdatedEvent is published after a refresh republishes client state.
type ProfileUpdatedEvent struct {
	UserID string `json:"user_id"`
	RunID  string `json:"run_id,omitempty"`
}
