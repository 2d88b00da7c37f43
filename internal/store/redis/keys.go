package redis

// KeyPrefix namespaces every logical key in the shared Redis keyspace
const KeyPrefix = "reel:"

// Key returns the Redis key for a logical key
func Key(name string) string {
	return KeyPrefix + name
}

// Keys maps logical keys to Redis keys
func Keys(names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Key(n)
	}
	return out
}
