package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	c := Config{
		Host:           "db.internal",
		Port:           5433,
		Database:       "botcore",
		User:           "bot",
		Password:       "hunter2",
		SSLMode:        "require",
		ConnectTimeout: 10 * time.Second,
	}
	assert.Equal(t,
		"host=db.internal port=5433 dbname=botcore user=bot password=hunter2 sslmode=require connect_timeout=10",
		c.DSN(),
	)
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 5432, c.Port)
	assert.Equal(t, "postgres", c.Database)
	assert.Equal(t, "disable", c.SSLMode)
	assert.Equal(t, int32(10), c.MaxConns)
	assert.Equal(t, int32(2), c.MinConns)
}

func TestValueSerialization(t *testing.T) {
	type draft struct {
		Text     string `json:"text"`
		Revision int    `json:"revision"`
	}

	in := draft{Text: "hello", Revision: 2}
	data, err := codecJSON.Marshal(in)
	require.NoError(t, err)

	var out draft
	require.NoError(t, codecJSON.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
