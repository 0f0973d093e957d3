package cache

import "fmt"

// UserKey is the cache key for a user looked up by identity-provider uid.
func UserKey(uid string) string {
	return fmt.Sprintf("user:uid:%s", uid)
}

// UserVersionKey holds the write generation for a uid. Writers bump it after
// commit; read-through fills only land while it is unchanged.
func UserVersionKey(uid string) string {
	return fmt.Sprintf("user:uid:%s:version", uid)
}
