package dynamo

// DynamoDB attribute names of the key-value table.
const (
	fieldStorageKey = "storage_key"
	fieldValue      = "value"
	fieldUpdatedAt  = "updated_at"
)
