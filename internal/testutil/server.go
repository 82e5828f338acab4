// Shared test server setup utilities, which simplify the API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/ardenvale/illuminator-go/internal/api"
	"github.com/ardenvale/illuminator-go/internal/config"
	"github.com/ardenvale/illuminator-go/internal/core"
	"github.com/ardenvale/illuminator-go/internal/illuminate"
)

// TestConfig returns a config suitable for tests: no API key, serial batches.
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.World.SchemaVersion = ">= 1.0.0, < 2.0.0"
	cfg.LLM.Model = "test-model"
	cfg.LLM.ImageModel = "test-image-model"
	cfg.LLM.Temperature = 0.7
	cfg.LLM.MaxTokens = 256
	cfg.LLM.BatchSize = 1
	return cfg
}

// SetupTestApp builds a core.App backed by an in-memory database and a fake
// model client.
func SetupTestApp(t *testing.T) (*core.App, *illuminate.FakeClient) {
	t.Helper()
	database := SetupTestDB(t)

	client := illuminate.NewFakeClient()
	app := core.NewWithComponents(TestConfig(), database, client, "test")
	return app, client
}

// SetupTestServer initializes a full core.App and api.Server for integration
// testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app, _ := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB()
}
