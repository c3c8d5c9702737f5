package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tadeyemo32/strategai-backend/config"
	"github.com/tadeyemo32/strategai-backend/models"
)

// setupReportStore opens a fresh SQLite database in a temp directory.
func setupReportStore(t *testing.T) *ReportStore {
	t.Helper()
	db, err := OpenDB(config.DBConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewReportStore(db)
}

func newTestReport(userID, company string) *models.Report {
	return models.NewReport(userID, company, "gpt-5-mini", NormalizeReport(nil, company, fixedNow))
}

func TestCreateReport_AssignsIDAndTimestamp(t *testing.T) {
	store := setupReportStore(t)
	ctx := context.Background()

	first := newTestReport("user-a", "Acme")
	second := newTestReport("user-a", "Acme")
	require.NoError(t, store.CreateReport(ctx, first))
	require.NoError(t, store.CreateReport(ctx, second))

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestGetReport_RoundTripsSections(t *testing.T) {
	store := setupReportStore(t)
	ctx := context.Background()

	created := newTestReport("user-a", "Acme")
	require.NoError(t, store.CreateReport(ctx, created))

	got, err := store.GetReport(ctx, "user-a", created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, "gpt-5-mini", got.AIVersion)
	assert.Equal(t, created.Content(), got.Content())
	assert.Equal(t, models.FlexString("acme.com"), got.WebsiteData.Data().Domain)
}

func TestGetReport_OtherUserIsNotFound(t *testing.T) {
	store := setupReportStore(t)
	ctx := context.Background()

	r := newTestReport("user-a", "Acme")
	require.NoError(t, store.CreateReport(ctx, r))

	_, err := store.GetReport(ctx, "user-b", r.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = store.GetReport(ctx, "user-a", "no-such-id")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestListReports_NewestFirstAndScoped(t *testing.T) {
	store := setupReportStore(t)
	ctx := context.Background()

	older := newTestReport("user-a", "Older")
	older.CreatedAt = fixedNow.Add(-time.Hour)
	newer := newTestReport("user-a", "Newer")
	newer.CreatedAt = fixedNow
	foreign := newTestReport("user-b", "Foreign")
	for _, r := range []*models.Report{older, newer, foreign} {
		require.NoError(t, store.CreateReport(ctx, r))
	}

	reports, err := store.ListReports(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "Newer", reports[0].CompanyName)
	assert.Equal(t, "Older", reports[1].CompanyName)

	none, err := store.ListReports(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeleteReport(t *testing.T) {
	store := setupReportStore(t)
	ctx := context.Background()

	r := newTestReport("user-a", "Acme")
	require.NoError(t, store.CreateReport(ctx, r))

	assert.ErrorIs(t, store.DeleteReport(ctx, "user-b", r.ID), ErrReportNotFound)
	require.NoError(t, store.DeleteReport(ctx, "user-a", r.ID))
	assert.ErrorIs(t, store.DeleteReport(ctx, "user-a", r.ID), ErrReportNotFound)

	_, err := store.GetReport(ctx, "user-a", r.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)
}
