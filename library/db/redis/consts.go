package redis

const (
	keyPrefix     = "chatgenius/"
	keyPrefixTask = keyPrefix + "tasks/"

	// KeyTaskIngestMessage is the list key holding pending message ingestion tasks
	KeyTaskIngestMessage = keyPrefixTask + "ingest_message"
)
