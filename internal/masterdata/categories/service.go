package categories

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	mdshared "github.com/marufrahmandev/inventory-management-system/internal/masterdata/shared"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/imghost"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// ImageUploader stores a picture with the external hosting service.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (imghost.Image, error)
	Delete(ctx context.Context, deleteID string) error
}

// Service wraps category business rules.
type Service struct {
	repo   Repository
	images ImageUploader
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo Repository, images ImageUploader, logger *slog.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, fmt.Errorf("%w: invalid category id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, category Category) (Category, error) {
	if err := s.validate(category); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, category)
}

func (s *Service) Update(ctx context.Context, id int64, category Category) (Category, error) {
	if id <= 0 {
		return Category{}, fmt.Errorf("%w: invalid category id", shared.ErrValidation)
	}
	if err := s.validate(category); err != nil {
		return Category{}, err
	}
	if err := s.repo.Update(ctx, id, category); err != nil {
		return Category{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid category id", shared.ErrValidation)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if existing.ImageDeleteID != "" {
		if err := s.images.Delete(ctx, existing.ImageDeleteID); err != nil {
			s.logger.Warn("delete category image failed", "error", err, "category_id", id)
		}
	}
	return nil
}

// AttachImage uploads a picture and stores its URL on the category. A failed
// delete of the previous image is logged, not surfaced.
func (s *Service) AttachImage(ctx context.Context, id int64, filename string, file io.Reader) (Category, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	img, err := s.images.Upload(ctx, filename, file)
	if err != nil {
		return Category{}, fmt.Errorf("upload image: %w", err)
	}
	if existing.ImageDeleteID != "" {
		if err := s.images.Delete(ctx, existing.ImageDeleteID); err != nil {
			s.logger.Warn("delete replaced category image failed", "error", err, "category_id", id)
		}
	}
	existing.ImageURL = img.URL
	existing.ImageDeleteID = img.DeleteID
	if err := s.repo.Update(ctx, id, existing); err != nil {
		return Category{}, err
	}
	return s.repo.Get(ctx, id)
}
