package redis

const (
	// KeyPrefixBulk is the prefix for bulk dataset keys
	KeyPrefixBulk = "bulk:"
	// KeyPrefixBulkTimestamp is the prefix for bulk refresh timestamp keys
	KeyPrefixBulkTimestamp = "bulk_ts:"
	// KeyPrefixUser is the prefix for per-user badge keys
	KeyPrefixUser = "user:"
)

// BulkKey returns the Redis key for a bulk source dataset
func BulkKey(source string) string {
	return KeyPrefixBulk + source
}

// BulkTimestampKey returns the Redis key for a bulk source's refresh timestamp
func BulkTimestampKey(source string) string {
	return KeyPrefixBulkTimestamp + source
}

// UserKey returns the Redis key for a user's cached badges from one source
func UserKey(source, userID string) string {
	return KeyPrefixUser + source + ":" + userID
}
