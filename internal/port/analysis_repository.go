package port

import (
	"context"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
)

// AnalysisRepository defines the contract for analysis persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, a *domain.Analysis) error
	GetByID(ctx context.Context, id int64) (*domain.Analysis, error)
	GetByFileName(ctx context.Context, fileName string) (*domain.Analysis, error)
	Exists(ctx context.Context, fileName string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error)
	Search(ctx context.Context, query string, offset, limit int) ([]domain.Analysis, int, error)
	ListAll(ctx context.Context) ([]domain.Analysis, error)
}
