package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a SQLite-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, a *domain.Analysis) error {
	if a.ProcessedAt.IsZero() {
		a.ProcessedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO analyses (file_name, document_type, model_used, analysis_json, processed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.FileName, a.DocumentType, a.ModelUsed, string(a.AnalysisJSON), a.ProcessedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrAnalysisExists
		}
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("analysisRepo.Create last insert id: %w", err)
	}
	a.ID = id
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id int64) (*domain.Analysis, error) {
	var a domain.Analysis
	err := r.db.GetContext(ctx, &a,
		"SELECT * FROM analyses WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByID: %w", err)
	}
	return &a, nil
}

func (r *analysisRepo) GetByFileName(ctx context.Context, fileName string) (*domain.Analysis, error) {
	var a domain.Analysis
	err := r.db.GetContext(ctx, &a,
		"SELECT * FROM analyses WHERE file_name = ?", fileName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByFileName: %w", err)
	}
	return &a, nil
}

func (r *analysisRepo) Exists(ctx context.Context, fileName string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM analyses WHERE file_name = ?", fileName)
	if err != nil {
		return false, fmt.Errorf("analysisRepo.Exists: %w", err)
	}
	return count > 0, nil
}

func (r *analysisRepo) List(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM analyses")
	if err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List count: %w", err)
	}

	var analyses []domain.Analysis
	err = r.db.SelectContext(ctx, &analyses,
		"SELECT * FROM analyses ORDER BY processed_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List: %w", err)
	}
	return analyses, total, nil
}

func (r *analysisRepo) Search(ctx context.Context, query string, offset, limit int) ([]domain.Analysis, int, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM analyses WHERE LOWER(file_name) LIKE ? ESCAPE '\'`, pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.Search count: %w", err)
	}

	var analyses []domain.Analysis
	err = r.db.SelectContext(ctx, &analyses,
		`SELECT * FROM analyses WHERE LOWER(file_name) LIKE ? ESCAPE '\'
		 ORDER BY processed_at DESC LIMIT ? OFFSET ?`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.Search: %w", err)
	}
	return analyses, total, nil
}

// escapeLike neutralizes LIKE metacharacters so user queries match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *analysisRepo) ListAll(ctx context.Context) ([]domain.Analysis, error) {
	var analyses []domain.Analysis
	err := r.db.SelectContext(ctx, &analyses,
		"SELECT * FROM analyses ORDER BY processed_at DESC")
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ListAll: %w", err)
	}
	return analyses, nil
}
