package firestore

import (
	"cloud.google.com/go/firestore"

	"github.com/roamly/server/pkg/profile"
	"github.com/roamly/server/pkg/types"
)

type Client struct {
	fs *firestore.Client
}

func NewClient(client *firestore.Client) *Client {
	return &Client{fs: client}
}

func (c *Client) Close() error {
	return c.fs.Close()
}

// Raw exposes the underlying client for transactional work that spans
// multiple documents (the categories replace).
func (c *Client) Raw() *firestore.Client {
	return c.fs
}

func (c *Client) Users() *Collection[profile.Profile] {
	return &Collection[profile.Profile]{
		Ref:           c.fs.Collection("users"),
		ToFirestore:   ProfileToFirestore,
		FromFirestore: FirestoreToProfile,
	}
}

// Categories are sub-collections of Users: users/{uid}/categories/{id}
func (c *Client) Categories(userID string) *Collection[profile.Category] {
	return &Collection[profile.Category]{
		Ref:           c.fs.Collection("users").Doc(userID).Collection("categories"),
		ToFirestore:   CategoryToFirestore,
		FromFirestore: FirestoreToCategory,
	}
}

// IngestionRuns are sub-collections of Users: users/{uid}/ingestion_runs/{id}
func (c *Client) IngestionRuns(userID string) *Collection[types.IngestionRun] {
	return &Collection[types.IngestionRun]{
		Ref:           c.fs.Collection("users").Doc(userID).Collection("ingestion_runs"),
		ToFirestore:   IngestionRunToFirestore,
		FromFirestore: FirestoreToIngestionRun,
	}
}

func (c *Client) Executions() *Collection[types.ExecutionRecord] {
	return &Collection[types.ExecutionRecord]{
		Ref:           c.fs.Collection("executions"),
		ToFirestore:   ExecutionToFirestore,
		FromFirestore: FirestoreToExecution,
	}
}
