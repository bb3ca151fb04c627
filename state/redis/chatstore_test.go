package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Addr(t *testing.T) {
	c := Config{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", c.Addr())
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "localhost:6379", c.Addr())
	assert.Equal(t, 0, c.DB)
	assert.Equal(t, 10, c.PoolSize)
	assert.Equal(t, 5*time.Second, c.DialTimeout)
}

func TestChatField(t *testing.T) {
	assert.Equal(t, "42", chatField(42))
	assert.Equal(t, "-1001234567890", chatField(-1001234567890))
}

func TestValueSerialization(t *testing.T) {
	// Values travel through the wire layer's codec; a round trip must be
	// lossless for the struct shapes handlers store.
	type session struct {
		Step    int      `json:"step"`
		Answers []string `json:"answers,omitempty"`
	}

	in := session{Step: 3, Answers: []string{"a", "b"}}
	data, err := codecJSON.Marshal(in)
	require.NoError(t, err)

	var out session
	require.NoError(t, codecJSON.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
