package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/store"
	"github.com/lucasaraujosgc-hue/crm/internal/testhelpers"
)

func newStore(t *testing.T) *store.BatchStore {
	t.Helper()
	return store.NewBatchStore(testhelpers.NewTestDB(t))
}

func createBatch(t *testing.T, s *store.BatchStore, id string) {
	t.Helper()
	require.NoError(t, s.CreateBatch(context.Background(), &models.Batch{ID: id, Filename: id + ".pdf"}))
}

func TestCreateAndGetBatch(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createBatch(t, s, "b1")

	b, err := s.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1.pdf", b.Filename)
	assert.Equal(t, models.BatchProcessing, b.Status)
	assert.False(t, b.TotalKnown)
	assert.Equal(t, 0, b.Processed)
	assert.Nil(t, b.EndTime)
	assert.False(t, b.StartTime.IsZero())
}

func TestGetBatchNotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetBatch(context.Background(), "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestSetTotalOnlyOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createBatch(t, s, "b1")

	require.NoError(t, s.SetTotal(ctx, "b1", 3))
	assert.ErrorIs(t, s.SetTotal(ctx, "b1", 4), store.ErrTotalAlreadySet)
	assert.ErrorIs(t, s.SetTotal(ctx, "nope", 1), store.ErrNotFound)

	b, err := s.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, b.TotalKnown)
	assert.Equal(t, 3, b.Total)
}

func TestUpdateProgressIsBoundedAndMonotone(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createBatch(t, s, "b1")

	assert.ErrorIs(t, s.UpdateProgress(ctx, "b1", 1), store.ErrInvalidProgress, "total not set yet")

	require.NoError(t, s.SetTotal(ctx, "b1", 2))
	require.NoError(t, s.UpdateProgress(ctx, "b1", 1))
	require.NoError(t, s.UpdateProgress(ctx, "b1", 1), "same value is accepted")
	assert.ErrorIs(t, s.UpdateProgress(ctx, "b1", 0), store.ErrInvalidProgress)
	assert.ErrorIs(t, s.UpdateProgress(ctx, "b1", 3), store.ErrInvalidProgress)
	require.NoError(t, s.UpdateProgress(ctx, "b1", 2))

	b, err := s.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Processed)
}

func TestFinishIsTerminal(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createBatch(t, s, "b1")
	require.NoError(t, s.SetTotal(ctx, "b1", 0))

	assert.Error(t, s.Finish(ctx, "b1", models.BatchProcessing))
	require.NoError(t, s.Finish(ctx, "b1", models.BatchCompleted))
	assert.ErrorIs(t, s.Finish(ctx, "b1", models.BatchError), store.ErrNotProcessing)
	assert.ErrorIs(t, s.UpdateProgress(ctx, "b1", 0), store.ErrNotProcessing)

	b, err := s.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompleted, b.Status)
	require.NotNil(t, b.EndTime)
	assert.False(t, b.EndTime.Before(b.StartTime))
}

func TestFailInterrupted(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createBatch(t, s, "running")
	createBatch(t, s, "done")
	require.NoError(t, s.Finish(ctx, "done", models.BatchCompleted))

	n, err := s.FailInterrupted(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	b, err := s.GetBatch(ctx, "running")
	require.NoError(t, err)
	assert.Equal(t, models.BatchError, b.Status)
	assert.NotNil(t, b.EndTime)

	b, err = s.GetBatch(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompleted, b.Status)
}

func TestAppendAndListResults(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createBatch(t, s, "b1")
	createBatch(t, s, "b2")

	name := "EMPRESA EXEMPLO LTDA"
	ok := &models.Result{
		BatchID:           "b1",
		InscricaoEstadual: "123456789",
		RazaoSocial:       &name,
		Status:            models.ResolutionSuccess,
	}
	require.NoError(t, s.AppendResult(ctx, ok))
	assert.NotZero(t, ok.ID)
	assert.Equal(t, models.CampaignPending, ok.CampaignStatus)

	require.NoError(t, s.AppendResult(ctx, models.NavigationFailure("b1", "987654321")))
	require.NoError(t, s.AppendResult(ctx, models.NavigationFailure("b2", "111222333")))

	batchResults, err := s.ListBatchResults(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, batchResults, 2)
	assert.Equal(t, "123456789", batchResults[0].InscricaoEstadual)
	require.NotNil(t, batchResults[0].RazaoSocial)
	assert.Equal(t, name, *batchResults[0].RazaoSocial)
	assert.Nil(t, batchResults[0].CNPJ, "absent attributes stay absent")
	assert.Equal(t, models.ResolutionNavigationError, batchResults[1].Status)
	assert.Equal(t, models.CampaignError, batchResults[1].CampaignStatus)

	all, err := s.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "111222333", all[0].InscricaoEstadual, "newest first")

	_, err = s.ListBatchResults(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateCampaignStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createBatch(t, s, "b1")

	r := models.NavigationFailure("b1", "123456789")
	r.CampaignStatus = models.CampaignPending
	require.NoError(t, s.AppendResult(ctx, r))

	notes := "ligar amanhã"
	contacted := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	require.NoError(t, s.UpdateCampaignStatus(ctx, r.ID, models.CampaignSent, &notes, &contacted))

	got, err := s.GetResult(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSent, got.CampaignStatus)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	require.NotNil(t, got.LastContacted)
	assert.True(t, contacted.Equal(*got.LastContacted))

	require.NoError(t, s.UpdateCampaignStatus(ctx, r.ID, models.CampaignPending, nil, nil))
	got, err = s.GetResult(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastContacted)
	require.NotNil(t, got.Notes, "notes kept when not supplied")

	assert.ErrorIs(t, s.UpdateCampaignStatus(ctx, 9999, models.CampaignSent, nil, nil), store.ErrNotFound)
}
