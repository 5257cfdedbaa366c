package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, 2*time.Second, p.NextDelay(1))
	assert.Equal(t, 4*time.Second, p.NextDelay(2))
	assert.Equal(t, 8*time.Second, p.NextDelay(3))
}

func TestRetryPolicyClampsToMaxDelay(t *testing.T) {
	p := RetryPolicy{
		InitialDelay:  2 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}
	assert.Equal(t, 10*time.Second, p.NextDelay(10))
}

func TestRetryPolicyDefaults(t *testing.T) {
	var p RetryPolicy

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, time.Second, p.NextDelay(0))
}
