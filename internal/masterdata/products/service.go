package products

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	mdshared "github.com/marufrahmandev/inventory-management-system/internal/masterdata/shared"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/imghost"
)

// ImageUploader uploads product images to the external host.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (imghost.Image, error)
	Delete(ctx context.Context, deleteID string) error
}

// Service implements product use-cases.
type Service struct {
	repo   Repository
	images ImageUploader
	log    *slog.Logger
}

// NewService constructs Service.
func NewService(repo Repository, images ImageUploader, log *slog.Logger) *Service {
	return &Service{repo: repo, images: images, log: log}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := validateProduct(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, product Product) (Product, error) {
	if err := validateProduct(product); err != nil {
		return Product{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	product.ImageURL = current.ImageURL
	product.ImageDeleteID = current.ImageDeleteID
	if err := s.repo.Update(ctx, id, product); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if product.ImageDeleteID != "" && s.images != nil {
		if err := s.images.Delete(ctx, product.ImageDeleteID); err != nil {
			s.log.Warn("delete product image", "product_id", id, "error", err)
		}
	}
	for _, img := range product.Gallery {
		if img.DeleteID == "" || s.images == nil {
			continue
		}
		if err := s.images.Delete(ctx, img.DeleteID); err != nil {
			s.log.Warn("delete gallery image", "product_id", id, "image_id", img.ID, "error", err)
		}
	}
	return nil
}

// AttachImage uploads and replaces the primary product image.
func (s *Service) AttachImage(ctx context.Context, id int64, filename string, r io.Reader) (Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	uploaded, err := s.images.Upload(ctx, filename, r)
	if err != nil {
		return Product{}, fmt.Errorf("upload product image: %w", err)
	}
	previous := product.ImageDeleteID
	product.ImageURL = uploaded.URL
	product.ImageDeleteID = uploaded.DeleteID
	if err := s.repo.Update(ctx, id, product); err != nil {
		return Product{}, err
	}
	if previous != "" {
		if err := s.images.Delete(ctx, previous); err != nil {
			s.log.Warn("delete replaced product image", "product_id", id, "error", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// AddGalleryImage uploads and appends an image to the product gallery.
func (s *Service) AddGalleryImage(ctx context.Context, id int64, filename string, r io.Reader) (GalleryImage, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return GalleryImage{}, err
	}
	uploaded, err := s.images.Upload(ctx, filename, r)
	if err != nil {
		return GalleryImage{}, fmt.Errorf("upload gallery image: %w", err)
	}
	return s.repo.AppendGalleryImage(ctx, id, uploaded.URL, uploaded.DeleteID)
}

// RemoveGalleryImage deletes a gallery entry and its hosted file.
func (s *Service) RemoveGalleryImage(ctx context.Context, productID, imageID int64) error {
	img, err := s.repo.RemoveGalleryImage(ctx, productID, imageID)
	if err != nil {
		return err
	}
	if img.DeleteID != "" && s.images != nil {
		if err := s.images.Delete(ctx, img.DeleteID); err != nil {
			s.log.Warn("delete gallery image", "product_id", productID, "image_id", imageID, "error", err)
		}
	}
	return nil
}
