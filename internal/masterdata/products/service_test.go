package products

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	mdshared "github.com/marufrahmandev/inventory-management-system/internal/masterdata/shared"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/imghost"
	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

type memoryProductRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: map[int64]Product{}, nextID: 1}
}

func (r *memoryProductRepo) List(_ context.Context, _ mdshared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryProductRepo) Get(_ context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryProductRepo) GetProducts(_ context.Context, ids []int64) (map[int64]pricing.CatalogProduct, error) {
	out := map[int64]pricing.CatalogProduct{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = pricing.CatalogProduct{ID: p.ID, Name: p.Name, Price: p.Price, Cost: p.Cost}
		}
	}
	return out, nil
}

func (r *memoryProductRepo) Create(_ context.Context, product Product) (Product, error) {
	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryProductRepo) Update(_ context.Context, id int64, product Product) error {
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	product.ID = id
	r.products[id] = product
	return nil
}

func (r *memoryProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryProductRepo) AppendGalleryImage(_ context.Context, productID int64, url, deleteID string) (GalleryImage, error) {
	p := r.products[productID]
	img := GalleryImage{ID: int64(len(p.Gallery) + 1), ProductID: productID, Position: len(p.Gallery) + 1, URL: url, DeleteID: deleteID}
	p.Gallery = append(p.Gallery, img)
	r.products[productID] = p
	return img, nil
}

func (r *memoryProductRepo) RemoveGalleryImage(_ context.Context, productID, imageID int64) (GalleryImage, error) {
	p := r.products[productID]
	for i, img := range p.Gallery {
		if img.ID == imageID {
			p.Gallery = append(p.Gallery[:i], p.Gallery[i+1:]...)
			r.products[productID] = p
			return img, nil
		}
	}
	return GalleryImage{}, shared.ErrNotFound
}

type fakeUploader struct {
	uploads int
	deleted []string
	fail    bool
}

func (u *fakeUploader) Upload(_ context.Context, filename string, _ io.Reader) (imghost.Image, error) {
	if u.fail {
		return imghost.Image{}, fmt.Errorf("host down")
	}
	u.uploads++
	return imghost.Image{URL: "https://img.example/" + filename, DeleteID: fmt.Sprintf("del-%d", u.uploads)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, deleteID string) error {
	u.deleted = append(u.deleted, deleteID)
	return nil
}

func newProductService(repo Repository, up ImageUploader) *Service {
	return NewService(repo, up, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateRequiresNameAndSKU(t *testing.T) {
	svc := newProductService(newMemoryProductRepo(), &fakeUploader{})

	_, err := svc.Create(context.Background(), Product{SKU: "SKU-1"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), Product{Name: "Cable"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), Product{Name: "Cable", SKU: "SKU-1", Price: -1})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdatePreservesImage(t *testing.T) {
	repo := newMemoryProductRepo()
	svc := newProductService(repo, &fakeUploader{})

	created, err := svc.Create(context.Background(), Product{Name: "Cable", SKU: "SKU-1"})
	require.NoError(t, err)

	p := repo.products[created.ID]
	p.ImageURL = "https://img.example/cable.png"
	p.ImageDeleteID = "del-keep"
	repo.products[created.ID] = p

	updated, err := svc.Update(context.Background(), created.ID, Product{Name: "Cable 2m", SKU: "SKU-1"})
	require.NoError(t, err)
	require.Equal(t, "https://img.example/cable.png", updated.ImageURL)
	require.Equal(t, "del-keep", repo.products[created.ID].ImageDeleteID)
}

func TestAttachImageReplacesPrevious(t *testing.T) {
	repo := newMemoryProductRepo()
	up := &fakeUploader{}
	svc := newProductService(repo, up)

	created, err := svc.Create(context.Background(), Product{Name: "Cable", SKU: "SKU-1"})
	require.NoError(t, err)

	first, err := svc.AttachImage(context.Background(), created.ID, "a.png", strings.NewReader("img"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ImageURL)
	require.Empty(t, up.deleted)

	_, err = svc.AttachImage(context.Background(), created.ID, "b.png", strings.NewReader("img"))
	require.NoError(t, err)
	require.Equal(t, []string{"del-1"}, up.deleted)
}

func TestDeleteRemovesRemoteImages(t *testing.T) {
	repo := newMemoryProductRepo()
	up := &fakeUploader{}
	svc := newProductService(repo, up)

	created, err := svc.Create(context.Background(), Product{Name: "Cable", SKU: "SKU-1"})
	require.NoError(t, err)
	_, err = svc.AttachImage(context.Background(), created.ID, "a.png", strings.NewReader("img"))
	require.NoError(t, err)
	_, err = svc.AddGalleryImage(context.Background(), created.ID, "g.png", strings.NewReader("img"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.ElementsMatch(t, []string{"del-1", "del-2"}, up.deleted)
	require.Empty(t, repo.products)
}

func TestAddGalleryImageUnknownProduct(t *testing.T) {
	svc := newProductService(newMemoryProductRepo(), &fakeUploader{})

	_, err := svc.AddGalleryImage(context.Background(), 99, "g.png", strings.NewReader("img"))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAttachImageUploadFailure(t *testing.T) {
	repo := newMemoryProductRepo()
	svc := newProductService(repo, &fakeUploader{fail: true})

	created, err := svc.Create(context.Background(), Product{Name: "Cable", SKU: "SKU-1"})
	require.NoError(t, err)

	_, err = svc.AttachImage(context.Background(), created.ID, "a.png", strings.NewReader("img"))
	require.Error(t, err)
	require.Empty(t, repo.products[created.ID].ImageURL)
}
