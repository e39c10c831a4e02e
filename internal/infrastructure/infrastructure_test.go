package infrastructure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/halalcheck/internal/catalog/postgres"
	"github.com/JaimeStill/halalcheck/internal/config"
	"github.com/JaimeStill/halalcheck/internal/infrastructure"
	"github.com/JaimeStill/halalcheck/pkg/cache"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func finalized(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := &config.Config{Store: config.StoreMemory}
	cfg.Gemini.APIKey = "test-key"
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Finalize())
	return cfg
}

func TestNewMemoryStore(t *testing.T) {
	infra, err := infrastructure.New(finalized(t, nil))
	require.NoError(t, err)

	assert.NotNil(t, infra.Lifecycle)
	assert.NotNil(t, infra.Logger)
	assert.NotNil(t, infra.Store)
	assert.NotNil(t, infra.Generator)
	assert.NotNil(t, infra.Authenticator)
	assert.Nil(t, infra.Database)
	assert.Nil(t, infra.Storage)
	assert.IsType(t, &cache.Memory{}, infra.Cache)
}

func TestNewPostgresStore(t *testing.T) {
	infra, err := infrastructure.New(finalized(t, func(c *config.Config) {
		c.Store = config.StorePostgres
		c.Database.Name = "halalcheck"
		c.Database.User = "halalcheck"
	}))
	require.NoError(t, err)
	t.Cleanup(func() { infra.Database.Connection().Close() })

	require.NotNil(t, infra.Database)
	assert.IsType(t, &postgres.Store{}, infra.Store)
}

func TestNewArchiveStorage(t *testing.T) {
	infra, err := infrastructure.New(finalized(t, func(c *config.Config) {
		c.Storage.ConnectionString = azuriteConnString
	}))
	require.NoError(t, err)
	assert.NotNil(t, infra.Storage)
}

func TestNewInvalidStorageConfig(t *testing.T) {
	_, err := infrastructure.New(finalized(t, func(c *config.Config) {
		c.Storage.ConnectionString = "not-a-connection-string"
	}))
	assert.Error(t, err)
}

func TestStartMemoryStoreIsReady(t *testing.T) {
	infra, err := infrastructure.New(finalized(t, nil))
	require.NoError(t, err)

	require.NoError(t, infra.Start())
	require.NoError(t, infra.Lifecycle.WaitForStartup())
	assert.True(t, infra.Lifecycle.Ready())
	assert.NoError(t, infra.Lifecycle.Shutdown(time.Second))
}
