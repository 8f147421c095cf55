package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lucasaraujosgc-hue/crm/internal/config"
	"github.com/lucasaraujosgc-hue/crm/internal/logger"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
	"github.com/lucasaraujosgc-hue/crm/internal/store"
	"github.com/lucasaraujosgc-hue/crm/internal/testhelpers"
)

func loadPage(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(raw)
}

// writeDocument stores pages as a form-feed separated text document
func writeDocument(t *testing.T, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contribuintes.txt")
	content := ""
	for i, p := range pages {
		if i > 0 {
			content += "\f"
		}
		content += p
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testRegistry() config.RegistryConfig {
	cfg := config.Defaults().Registry
	cfg.LookupTimeout = 50 * time.Millisecond
	cfg.ExtractTimeout = 50 * time.Millisecond
	return cfg
}

func newRepo(t *testing.T) *store.BatchStore {
	t.Helper()
	return store.NewBatchStore(testhelpers.NewTestDB(t))
}

func newCoordinator(repo services.BatchRepository, sessions services.SessionFactory, cache services.RecordCacheInterface) *services.BatchCoordinator {
	log := logger.Discard()
	return services.NewBatchCoordinator(
		repo,
		services.NewIdentifierScanner(services.DefaultDocumentReaders(), log),
		sessions,
		services.NewLookupProtocol(testRegistry(), log),
		services.NewRecordExtractor(testRegistry(), log),
		cache,
		log,
	)
}

func startBatch(t *testing.T, repo *store.BatchStore, id string) {
	t.Helper()
	require.NoError(t, repo.CreateBatch(context.Background(), &models.Batch{ID: id, Filename: "contribuintes.txt"}))
}
