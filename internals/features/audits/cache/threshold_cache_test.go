package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	section := int64(12)
	assert.Equal(t, "audit:threshold:3:overall", Key(3, nil))
	assert.Equal(t, "audit:threshold:3:section:12", Key(3, &section))
}

func TestNoop(t *testing.T) {
	var c ThresholdCache = Noop{}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, 1, nil, 90))
	grade, ok, err := c.Get(ctx, 1, nil)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, grade)
	assert.NoError(t, c.InvalidateSchema(ctx, 1))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.ErrorContains(t, err, "parse redis url")
}
