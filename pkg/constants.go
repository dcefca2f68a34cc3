package shared

const (
	ProjectID = "roamly-project" // Can be overridden by env var in main if needed

	TopicTakeoutUploaded = "topic-takeout-uploaded" // Ingestion pipeline entry point
	TopicProfileUpdated  = "topic-profile-updated"

	CollectionUsers         = "users"
	CollectionCategories    = "categories"
	CollectionIngestionRuns = "ingestion_runs"
	CollectionExecutions    = "executions"
)
