package cache

import (
	"errors"
	"fmt"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

type CacheError struct {
	Operation string
	Err       error
}

func NewCacheError(operation string, err error) *CacheError {
	return &CacheError{
		Operation: operation,
		Err:       err,
	}
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache operation %s failed: %v", e.Operation, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
