package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.Equal(t, 30, retryAfterSeconds(now.Add(30*time.Second).Unix(), now))
	assert.Equal(t, 1, retryAfterSeconds(now.Unix(), now))
	assert.Equal(t, 1, retryAfterSeconds(now.Add(-time.Minute).Unix(), now))
	assert.Equal(t, 2, retryAfterSeconds(now.Unix()+2, now.Add(100*time.Millisecond)))
}
