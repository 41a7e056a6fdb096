package client

import (
	"testing"

	"books-storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStoreClient(t *testing.T) {
	db, err := InitStoreClient(&config.Store{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("storage_entries"))
	assert.True(t, db.Migrator().HasTable("payment_transactions"))
	assert.True(t, db.Migrator().HasTable("cached_resources"))

	_, err = InitStoreClient(&config.Store{Driver: "postgres"})
	assert.Error(t, err)
}
