package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/config"
)

func TestNewPostgresRequiresDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, pg)
}

func TestPingWithoutPoolFails(t *testing.T) {
	var pg *Postgres
	assert.Error(t, pg.Ping(context.Background()))
}
