package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasaraujosgc-hue/crm/internal/logger"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
	"github.com/lucasaraujosgc-hue/crm/internal/store"
	"github.com/lucasaraujosgc-hue/crm/internal/testhelpers"
)

func TestRunWithoutIdentifiersCompletesEmpty(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	factory := testhelpers.NewFakeSessionFactory(nil)

	newCoordinator(repo, factory, nil).Run(context.Background(), "b1", writeDocument(t, "nenhuma inscrição aqui"))

	b, err := repo.GetBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompleted, b.Status)
	assert.True(t, b.TotalKnown)
	assert.Equal(t, 0, b.Total)
	assert.NotNil(t, b.EndTime)
	assert.Empty(t, factory.Sessions(), "no session is started for an empty batch")
}

func TestRunUnreadableDocumentCompletesEmpty(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")

	newCoordinator(repo, testhelpers.NewFakeSessionFactory(nil), nil).
		Run(context.Background(), "b1", "/nonexistent/contribuintes.pdf")

	b, err := repo.GetBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompleted, b.Status)
	assert.Equal(t, 0, b.Total)
}

func TestRunRecordsNavigationFailure(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	factory := testhelpers.NewFakeSessionFactory(map[string]testhelpers.FakePage{
		"123456789": {FailLookup: true},
	})

	newCoordinator(repo, factory, nil).Run(context.Background(), "b1", writeDocument(t, "123.456.789-"))

	results, err := repo.ListBatchResults(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "123456789", results[0].InscricaoEstadual)
	assert.Equal(t, models.ResolutionNavigationError, results[0].Status)
	assert.Equal(t, models.CampaignError, results[0].CampaignStatus)

	b, err := repo.GetBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompleted, b.Status)
	assert.Equal(t, 1, b.Processed)
}

func TestRunIsolatesItemFailures(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	page := loadPage(t, "result_page.html")
	factory := testhelpers.NewFakeSessionFactory(map[string]testhelpers.FakePage{
		"111111111": {Markup: page},
		"222222222": {PanicOnMarkup: true},
		"333333333": {Markup: page},
	})

	doc := writeDocument(t, "111.111.111 - A\n222.222.222 - B", "333.333.333 - C")
	newCoordinator(repo, factory, nil).Run(context.Background(), "b1", doc)

	b, err := repo.GetBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompleted, b.Status)
	assert.Equal(t, 3, b.Total)
	assert.Equal(t, 3, b.Processed)

	results, err := repo.ListBatchResults(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"111111111", "222222222", "333333333"},
		[]string{results[0].InscricaoEstadual, results[1].InscricaoEstadual, results[2].InscricaoEstadual})
	assert.True(t, results[0].Succeeded())
	assert.True(t, strings.HasPrefix(results[1].Status, "Erro: "), results[1].Status)
	assert.Contains(t, results[1].Status, "222222222")
	assert.True(t, results[2].Succeeded())
}

func TestRunClosesSessionOnce(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	factory := testhelpers.NewFakeSessionFactory(map[string]testhelpers.FakePage{
		"111111111": {Markup: loadPage(t, "result_page.html")},
	})

	newCoordinator(repo, factory, nil).Run(context.Background(), "b1", writeDocument(t, "111.111.111 - A\n222.222.222 - B"))

	sessions := factory.Sessions()
	require.Len(t, sessions, 1, "one session per batch")
	assert.Equal(t, int64(1), sessions[0].CloseCount())
}

func TestRunFailsBatchWhenSessionCannotStart(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	factory := testhelpers.NewFakeSessionFactory(nil)
	factory.Err = errors.New("chrome not found")

	newCoordinator(repo, factory, nil).Run(context.Background(), "b1", writeDocument(t, "123.456.789 - A"))

	b, err := repo.GetBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchError, b.Status)
	assert.Equal(t, 1, b.Total)
	assert.Equal(t, 0, b.Processed)
	assert.NotNil(t, b.EndTime)

	results, err := repo.ListBatchResults(context.Background(), "b1")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunKeepsBatchesApart(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	startBatch(t, repo, "b2")
	factory := testhelpers.NewFakeSessionFactory(map[string]testhelpers.FakePage{
		"111111111": {Markup: loadPage(t, "result_page.html")},
	})
	coordinator := newCoordinator(repo, factory, nil)

	coordinator.Run(context.Background(), "b1", writeDocument(t, "111.111.111 - A"))
	coordinator.Run(context.Background(), "b2", writeDocument(t, "111.111.111 - A\n999.999.999 - Z"))

	first, err := repo.ListBatchResults(context.Background(), "b1")
	require.NoError(t, err)
	second, err := repo.ListBatchResults(context.Background(), "b2")
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
	for _, r := range second {
		assert.Equal(t, "b2", r.BatchID)
	}
}

func TestRunServesRepeatedIdentifiersFromCache(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	startBatch(t, repo, "b2")
	factory := testhelpers.NewFakeSessionFactory(map[string]testhelpers.FakePage{
		"111111111": {Markup: loadPage(t, "result_page.html")},
	})
	cache := services.NewRecordCache(nil, time.Minute, logger.Discard())
	coordinator := newCoordinator(repo, factory, cache)

	coordinator.Run(context.Background(), "b1", writeDocument(t, "111.111.111 - A"))
	coordinator.Run(context.Background(), "b2", writeDocument(t, "111.111.111 - A"))

	require.Len(t, factory.Sessions(), 2)
	assert.Len(t, factory.Sessions()[0].Queried(), 1)
	assert.Empty(t, factory.Sessions()[1].Queried(), "second batch answered from cache")

	results, err := repo.ListBatchResults(context.Background(), "b2")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b2", results[0].BatchID)
	require.NotNil(t, results[0].RazaoSocial)
	assert.Equal(t, "EMPRESA EXEMPLO LTDA", *results[0].RazaoSocial)
	assert.Equal(t, int64(1), cache.Stats().Hits)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	factory := testhelpers.NewFakeSessionFactory(nil)
	factory.Gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newCoordinator(repo, factory, nil).Run(ctx, "b1", writeDocument(t, "111.111.111 - A\n222.222.222 - B"))
		close(done)
	}()

	require.Eventually(t, func() bool { return len(factory.Sessions()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop")
	}

	b, err := repo.GetBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchError, b.Status)
	assert.Equal(t, 0, b.Processed, "the item cut short is not counted")
	assert.Equal(t, int64(1), factory.Sessions()[0].CloseCount())

	results, err := repo.ListBatchResults(context.Background(), "b1")
	require.NoError(t, err)
	assert.Empty(t, results, "a cancelled lookup is not a registry failure")
}

// failingRepo fails chosen calls and delegates everything else to the store
type failingRepo struct {
	*store.BatchStore
	failAppendOn   int
	failProgressOn int

	appends  int
	progress int
}

func (r *failingRepo) AppendResult(ctx context.Context, result *models.Result) error {
	r.appends++
	if r.appends == r.failAppendOn {
		return errors.New("disk I/O error")
	}
	return r.BatchStore.AppendResult(ctx, result)
}

func (r *failingRepo) UpdateProgress(ctx context.Context, id string, processed int) error {
	r.progress++
	if r.progress == r.failProgressOn {
		return errors.New("database is locked")
	}
	return r.BatchStore.UpdateProgress(ctx, id, processed)
}

func TestRunIsolatesPersistenceFailures(t *testing.T) {
	tests := []struct {
		name        string
		repo        func(*store.BatchStore) *failingRepo
		wantResults int
	}{
		{
			name:        "result write fails",
			repo:        func(s *store.BatchStore) *failingRepo { return &failingRepo{BatchStore: s, failAppendOn: 2} },
			wantResults: 2,
		},
		{
			name:        "progress commit fails",
			repo:        func(s *store.BatchStore) *failingRepo { return &failingRepo{BatchStore: s, failProgressOn: 2} },
			wantResults: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := newRepo(t)
			startBatch(t, base, "b1")
			repo := tt.repo(base)

			doc := writeDocument(t, "111.111.111 - A\n222.222.222 - B\n333.333.333 - C")
			newCoordinator(repo, testhelpers.NewFakeSessionFactory(nil), nil).Run(context.Background(), "b1", doc)

			b, err := base.GetBatch(context.Background(), "b1")
			require.NoError(t, err)
			assert.Equal(t, models.BatchCompleted, b.Status)
			assert.Equal(t, 3, b.Total)
			assert.Equal(t, 3, b.Processed)

			results, err := base.ListBatchResults(context.Background(), "b1")
			require.NoError(t, err)
			assert.Len(t, results, tt.wantResults)
		})
	}
}

func TestRunLogsIdentifiersAsDigits(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")
	factory := testhelpers.NewFakeSessionFactory(map[string]testhelpers.FakePage{
		"111111111": {Markup: loadPage(t, "result_page.html")},
	})

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	coordinator := services.NewBatchCoordinator(
		repo,
		services.NewIdentifierScanner(services.DefaultDocumentReaders(), log),
		factory,
		services.NewLookupProtocol(testRegistry(), log),
		services.NewRecordExtractor(testRegistry(), log),
		nil,
		log,
	)

	coordinator.Run(context.Background(), "b1", writeDocument(t, "111.111.111 - A\n222.222.222 - B"))

	seen := map[string]bool{}
	for _, entry := range hook.AllEntries() {
		if ie, ok := entry.Data["inscricao_estadual"]; ok {
			seen[ie.(string)] = true
		}
	}
	assert.Equal(t, map[string]bool{"111111111": true, "222222222": true}, seen)
}
