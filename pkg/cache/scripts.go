package cache

import (
	"github.com/go-redis/redis/v8"
)

// Lua scripts for Redis operations
var (
	setIfVersionScript *redis.Script
)

func init() {
	// store a value only while the version key still holds the expected
	// generation. A missing version key counts as generation 0.
	setIfVersionScript = redis.NewScript(`
		local current = redis.call('GET', KEYS[2]) or '0'
		if current ~= ARGV[1] then
			return 0
		end
		if tonumber(ARGV[3]) > 0 then
			redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
		else
			redis.call('SET', KEYS[1], ARGV[2])
		end
		return 1
	`)
}
