package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an externally constructed (typically mocked)
// rueidis client. Test use only.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
