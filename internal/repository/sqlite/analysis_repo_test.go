package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokshchadha/invoice-ocr/internal/config"
	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
	"github.com/mokshchadha/invoice-ocr/internal/repository/sqlite"
)

func newTestRepo(t *testing.T) port.AnalysisRepository {
	t.Helper()

	cfg := &config.DBConfig{Path: ":memory:", BusyTimeoutMS: 5000, MaxOpen: 1}
	db, err := sqlite.NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.EnsureSchema(db))
	return sqlite.NewAnalysisRepo(db)
}

func newAnalysis(fileName string, processedAt time.Time) *domain.Analysis {
	return &domain.Analysis{
		FileName:     fileName,
		DocumentType: domain.DocTypeSupplier,
		ModelUsed:    "gemini-1.5-flash",
		AnalysisJSON: types.JSONText(`{"totalAmount":"$100.00"}`),
		ProcessedAt:  processedAt,
	}
}

func TestAnalysisRepo_CreateAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := newAnalysis("invoice_001.pdf", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, a))
	assert.Greater(t, a.ID, int64(0))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice_001.pdf", got.FileName)
	assert.Equal(t, domain.DocTypeSupplier, got.DocumentType)
	assert.Equal(t, "gemini-1.5-flash", got.ModelUsed)
	assert.JSONEq(t, `{"totalAmount":"$100.00"}`, string(got.AnalysisJSON))
}

func TestAnalysisRepo_Create_DuplicateFileName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAnalysis("dup.pdf", time.Now().UTC())))

	err := repo.Create(ctx, newAnalysis("dup.pdf", time.Now().UTC()))
	assert.ErrorIs(t, err, domain.ErrAnalysisExists)
}

func TestAnalysisRepo_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}

func TestAnalysisRepo_GetByFileName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAnalysis("lookup.pdf", time.Now().UTC())))

	got, err := repo.GetByFileName(ctx, "lookup.pdf")
	require.NoError(t, err)
	assert.Equal(t, "lookup.pdf", got.FileName)

	_, err = repo.GetByFileName(ctx, "missing.pdf")
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}

func TestAnalysisRepo_Exists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAnalysis("seen.pdf", time.Now().UTC())))

	exists, err := repo.Exists(ctx, "seen.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "unseen.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAnalysisRepo_List_RecentFirstWithPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, repo.Create(ctx, newAnalysis(name, base.Add(time.Duration(i)*time.Hour))))
	}

	analyses, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, analyses, 2)
	assert.Equal(t, "c.pdf", analyses[0].FileName)
	assert.Equal(t, "b.pdf", analyses[1].FileName)

	analyses, total, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, analyses, 1)
	assert.Equal(t, "a.pdf", analyses[0].FileName)
}

func TestAnalysisRepo_Search_CaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newAnalysis("Acme_Invoice_01.pdf", now)))
	require.NoError(t, repo.Create(ctx, newAnalysis("freight_bill.pdf", now.Add(time.Minute))))

	analyses, total, err := repo.Search(ctx, "ACME", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, analyses, 1)
	assert.Equal(t, "Acme_Invoice_01.pdf", analyses[0].FileName)

	_, total, err = repo.Search(ctx, "nomatch", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestAnalysisRepo_Search_LikeMetacharactersMatchLiterally(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newAnalysis("inv_01.pdf", now)))
	require.NoError(t, repo.Create(ctx, newAnalysis("invx01.pdf", now.Add(time.Minute))))

	// "_" must not act as a single-character wildcard.
	analyses, total, err := repo.Search(ctx, "inv_01", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, analyses, 1)
	assert.Equal(t, "inv_01.pdf", analyses[0].FileName)

	// "%" must not match everything.
	_, total, err = repo.Search(ctx, "%", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestAnalysisRepo_ListAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newAnalysis("one.pdf", now)))
	require.NoError(t, repo.Create(ctx, newAnalysis("two.pdf", now.Add(time.Second))))

	analyses, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, "two.pdf", analyses[0].FileName)
}
